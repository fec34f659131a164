package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestLabelSetRegistry(t *testing.T) {
	ClearLabelSets()
	t.Cleanup(ClearLabelSets)

	RegisterLabelSet(LabelSet{Name: "b", Labels: testLabels.Labels})
	RegisterLabelSet(LabelSet{Name: "a", Labels: testLabels.Labels})

	if got := LabelSetNames(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("LabelSetNames() = %v, want [a b]", got)
	}

	ls, ok := LookupLabelSet("a")
	if !ok || ls.Name != "a" {
		t.Errorf("LookupLabelSet(a) = %v, %v", ls.Name, ok)
	}

	if _, err := LabelSetByName("zz"); !errors.Is(err, ErrUnknownLabelSet) {
		t.Errorf("LabelSetByName(zz) error = %v, want ErrUnknownLabelSet", err)
	}
}

func TestRegisterLabelSet_Panics(t *testing.T) {
	ClearLabelSets()
	t.Cleanup(ClearLabelSets)

	RegisterLabelSet(LabelSet{Name: "dup", Labels: testLabels.Labels})

	tests := []struct {
		name string
		ls   LabelSet
	}{
		{name: "duplicate name", ls: LabelSet{Name: "dup", Labels: testLabels.Labels}},
		{name: "role without labels", ls: LabelSet{Name: "partial", Labels: map[ColumnRole][]string{RoleItemCode: {"x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("RegisterLabelSet() did not panic")
				}
			}()
			RegisterLabelSet(tt.ls)
		})
	}
}

func TestLabelSet_RoleFor(t *testing.T) {
	if role, ok := testLabels.RoleFor("サイズ"); !ok || role != RoleSizeCode {
		t.Errorf("RoleFor(サイズ) = %v, %v", role, ok)
	}
	if _, ok := testLabels.RoleFor("品番 "); ok {
		t.Error("RoleFor() should match exactly")
	}
}
