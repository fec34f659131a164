package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorDetail is the context a pipeline failure carries: where it happened
// and which text was rejected. Zero fields are omitted.
type ErrorDetail struct {
	Line       int      `json:"line,omitempty"`
	Item       string   `json:"item,omitempty"`
	Token      string   `json:"token,omitempty"`
	Text       string   `json:"text,omitempty"`
	Missing    []string `json:"missing_columns,omitempty"`
	Duplicated []string `json:"duplicated_columns,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Upstream   string   `json:"upstream,omitempty"`
}

// DetailOf collects the context from the typed errors in err's chain.
func DetailOf(err error) ErrorDetail {
	var d ErrorDetail
	if err == nil {
		return d
	}

	var rowErr *RowError
	if errors.As(err, &rowErr) {
		d.Line = rowErr.Line
		d.Item = rowErr.ItemText
		if rowErr.Err != nil {
			d.Reason = rowErr.Err.Error()
		}
	}

	var measErr *MeasurementError
	if errors.As(err, &measErr) {
		d.Token = measErr.Token
		d.Text = measErr.Text
	}

	var colErr *ColumnError
	if errors.As(err, &colErr) {
		d.Missing = roleNames(colErr.Missing)
		d.Duplicated = roleNames(colErr.Duplicated)
	}
	return d
}

// IsZero reports whether d carries no context.
func (d ErrorDetail) IsZero() bool {
	return d.Line == 0 && d.Item == "" && d.Token == "" && d.Text == "" &&
		len(d.Missing) == 0 && len(d.Duplicated) == 0 && d.Reason == "" && d.Upstream == ""
}

// String renders d on one line, e.g. `line 3, item A001: token "ヒップ92" in "ヒップ92 着丈:68"`.
func (d ErrorDetail) String() string {
	var where []string
	if d.Line > 0 {
		where = append(where, fmt.Sprintf("line %d", d.Line))
	}
	if d.Item != "" {
		where = append(where, "item "+d.Item)
	}

	var what []string
	switch {
	case d.Token != "":
		what = append(what, fmt.Sprintf("token %q in %q", d.Token, d.Text))
	case d.Text != "":
		what = append(what, fmt.Sprintf("cell %q", d.Text))
	case d.Reason != "":
		what = append(what, d.Reason)
	}
	if len(d.Missing) > 0 {
		what = append(what, "missing columns: "+strings.Join(d.Missing, ", "))
	}
	if len(d.Duplicated) > 0 {
		what = append(what, "duplicated columns: "+strings.Join(d.Duplicated, ", "))
	}
	if d.Upstream != "" {
		what = append(what, "upstream: "+d.Upstream)
	}

	head := strings.Join(where, ", ")
	body := strings.Join(what, "; ")
	switch {
	case head == "":
		return body
	case body == "":
		return head
	}
	return head + ": " + body
}

func roleNames(roles []ColumnRole) []string {
	if len(roles) == 0 {
		return nil
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return names
}
