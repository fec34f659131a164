package labels

import "github.com/JonMunkholm/sizetable/internal/core"

func init() {
	registerJapanese()
}

// registerJapanese registers the labels used by the merchandising sheets:
// 品番 (item number), SZ (size) and 採寸 (measurements).
func registerJapanese() {
	core.RegisterLabelSet(core.LabelSet{
		Name:        "ja",
		Description: "Japanese merchandising sheet (品番 / SZ / 採寸)",
		Labels: map[core.ColumnRole][]string{
			core.RoleItemCode:    {"品番"},
			core.RoleSizeCode:    {"SZ", "サイズ"},
			core.RoleMeasurement: {"採寸"},
		},
	})
}
