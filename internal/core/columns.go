package core

// ColumnRole is the meaning of a header column.
type ColumnRole int

const (
	RoleItemCode ColumnRole = iota + 1
	RoleSizeCode
	RoleMeasurement
)

// columnRoles lists every role in semantic order.
var columnRoles = []ColumnRole{RoleItemCode, RoleSizeCode, RoleMeasurement}

func (r ColumnRole) String() string {
	switch r {
	case RoleItemCode:
		return "item code"
	case RoleSizeCode:
		return "size code"
	case RoleMeasurement:
		return "measurement text"
	default:
		return "unknown"
	}
}

// LabelSet maps each column role to the header labels that identify it.
type LabelSet struct {
	Name        string
	Description string
	Labels      map[ColumnRole][]string
}

// RoleFor returns the role whose labels contain cell.
func (ls LabelSet) RoleFor(cell string) (ColumnRole, bool) {
	for _, role := range columnRoles {
		for _, label := range ls.Labels[role] {
			if label == cell {
				return role, true
			}
		}
	}
	return 0, false
}

// Columns holds the indexes of the three classified columns.
type Columns struct {
	Item        int
	Size        int
	Measurement int
}

// ClassifyColumns locates the item code, size code and measurement columns
// in header. Cells are trimmed and compared exactly against labels; cells
// matching no role are ignored. Each role must match exactly one cell.
func ClassifyColumns(header Row, labels LabelSet) (Columns, error) {
	found := make(map[ColumnRole][]int, len(columnRoles))
	for i := range header {
		if role, ok := labels.RoleFor(header.Text(i)); ok {
			found[role] = append(found[role], i)
		}
	}

	var colErr ColumnError
	for _, role := range columnRoles {
		switch n := len(found[role]); {
		case n == 0:
			colErr.Missing = append(colErr.Missing, role)
		case n > 1:
			colErr.Duplicated = append(colErr.Duplicated, role)
		}
	}
	if len(colErr.Missing) > 0 || len(colErr.Duplicated) > 0 {
		return Columns{}, &colErr
	}

	return Columns{
		Item:        found[RoleItemCode][0],
		Size:        found[RoleSizeCode][0],
		Measurement: found[RoleMeasurement][0],
	}, nil
}
