package labels

import "github.com/JonMunkholm/sizetable/internal/core"

func init() {
	registerEnglish()
}

func registerEnglish() {
	core.RegisterLabelSet(core.LabelSet{
		Name:        "en",
		Description: "English sheet (Item Code / Size / Measurements)",
		Labels: map[core.ColumnRole][]string{
			core.RoleItemCode:    {"Item Code", "Item"},
			core.RoleSizeCode:    {"Size", "Size Code"},
			core.RoleMeasurement: {"Measurements"},
		},
	})
}
