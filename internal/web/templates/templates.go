// Package templates renders the HTML pages of the upload UI. The components
// are written in the .templ files; the _templ.go files are generated from
// them with `templ generate`.
package templates

import (
	"fmt"

	"github.com/JonMunkholm/sizetable/internal/core"
)

// PageInfo is shown in the upload page header.
type PageInfo struct {
	Terms          int
	Origin         string
	SourceLanguage string
	TargetLanguage string
	Remote         string
	LabelSet       string
}

// Summary is the one-line glossary description under the page title.
func (i PageInfo) Summary() string {
	return fmt.Sprintf("Glossary %s (%d terms), %s → %s, labels %s, remote %s",
		i.Origin, i.Terms, i.SourceLanguage, i.TargetLanguage, i.LabelSet, i.Remote)
}

// PreviewParams feeds TablesPreview.
type PreviewParams struct {
	RunID       string
	FileName    string
	Tables      []core.ItemTable
	RemoteError string
	DurationMS  int64
}

// Summary is the line above the preview tables.
func (p PreviewParams) Summary() string {
	return fmt.Sprintf("%s: %d tables in %d ms", p.FileName, len(p.Tables), p.DurationMS)
}

// AlertParams feeds ErrorAlert. Detail holds the failing line and text, when known.
type AlertParams struct {
	Message string
	Action  string
	Code    string
	Detail  string
}
