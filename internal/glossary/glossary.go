// Package glossary loads the source-to-target label mapping used to
// translate measurement names.
//
// A Glossary is immutable once built. Sources (embedded CSV, CSV file, CSV
// URL, Postgres, Redis) each produce a fresh Glossary; Chain tries them in
// order and falls back to an empty glossary when all of them fail.
package glossary

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/JonMunkholm/sizetable/internal/sheet"
)

// ErrInvalidCSV is returned when a glossary CSV cannot be parsed.
var ErrInvalidCSV = errors.New("invalid csv glossary")

// Term is one glossary entry.
type Term struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Glossary maps source-language labels to target-language labels.
type Glossary struct {
	terms  map[string]string
	origin string
}

// New builds a glossary from terms. The map is copied.
func New(terms map[string]string, origin string) *Glossary {
	g := &Glossary{terms: make(map[string]string, len(terms)), origin: origin}
	for k, v := range terms {
		g.terms[k] = v
	}
	return g
}

// Empty returns a glossary with no terms.
func Empty() *Glossary {
	return &Glossary{terms: map[string]string{}, origin: "empty"}
}

// Lookup returns the target label for source.
func (g *Glossary) Lookup(source string) (string, bool) {
	if g == nil {
		return "", false
	}
	target, ok := g.terms[source]
	return target, ok
}

// Len returns the number of terms.
func (g *Glossary) Len() int {
	if g == nil {
		return 0
	}
	return len(g.terms)
}

// Origin names the source the glossary was loaded from.
func (g *Glossary) Origin() string {
	if g == nil {
		return ""
	}
	return g.origin
}

// Terms returns all entries sorted by source label.
func (g *Glossary) Terms() []Term {
	if g == nil {
		return nil
	}
	out := make([]Term, 0, len(g.terms))
	for s, t := range g.terms {
		out = append(out, Term{Source: s, Target: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// ReadTerms parses a two-column CSV (source, target) with a header row.
// Rows with an empty source are skipped; a later row overrides an earlier
// one with the same source.
func ReadTerms(r io.Reader) ([]Term, error) {
	reader := csv.NewReader(sheet.WrapText(r))
	reader.FieldsPerRecord = -1

	var terms []Term
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		if line == 1 {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d has %d columns, want 2", ErrInvalidCSV, line, len(record))
		}

		source := strings.TrimSpace(record[0])
		if source == "" {
			continue
		}
		terms = append(terms, Term{Source: source, Target: strings.TrimSpace(record[1])})
	}
	return terms, nil
}

// ParseCSV reads a glossary CSV into a Glossary.
func ParseCSV(r io.Reader, origin string) (*Glossary, error) {
	terms, err := ReadTerms(r)
	if err != nil {
		return nil, err
	}
	return FromTerms(terms, origin), nil
}

// FromTerms builds a glossary from entries; later duplicates win.
func FromTerms(terms []Term, origin string) *Glossary {
	g := &Glossary{terms: make(map[string]string, len(terms)), origin: origin}
	for _, t := range terms {
		g.terms[t.Source] = t.Target
	}
	return g
}

// Source loads a glossary.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Glossary, error)
}
