package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/sizetable/internal/garment"
)

// DefaultSizeLabel heads the size column of every table.
const DefaultSizeLabel = "尺码"

// DefaultLabelSet is the label set used when Options.Labels is empty.
const DefaultLabelSet = "ja"

// NameResolver translates measurement names.
//
// ResolveLocal never fails: names missing from the glossary pass through
// unchanged. ResolveRemote calls an external translator and is only used for
// glossary misses when Options.TranslateMisses is set.
type NameResolver interface {
	ResolveLocal(names []string) []string
	Lookup(name string) (string, bool)
	ResolveRemote(ctx context.Context, names []string) ([]string, error)
}

// Options configures a Pipeline.
type Options struct {
	SizeLabel       string          // first header cell, DefaultSizeLabel when empty
	Labels          LabelSet        // header labels, the DefaultLabelSet registration when empty
	OnDuplicate     DuplicatePolicy // repeated (item, size) rows
	OnMismatch      MismatchPolicy  // rows whose names differ from their group's first row
	TranslateMisses bool            // send glossary misses to ResolveRemote
}

// Result is the outcome of one pipeline run.
type Result struct {
	Tables  []ItemTable
	Records int // data rows turned into table rows

	// RemoteTranslated counts glossary misses translated remotely.
	RemoteTranslated int
	// RemoteErr is set when the remote fallback failed and names passed
	// through untranslated. It never fails the run.
	RemoteErr error
}

// Pipeline turns a header and data rows into per-item size tables.
// A Pipeline holds no run state and may be shared across goroutines when its
// resolver may.
type Pipeline struct {
	resolver NameResolver
	opts     Options
}

// NewPipeline creates a pipeline. A nil resolver passes names through.
func NewPipeline(resolver NameResolver, opts Options) *Pipeline {
	if resolver == nil {
		resolver = passThrough{}
	}
	if opts.SizeLabel == "" {
		opts.SizeLabel = DefaultSizeLabel
	}
	return &Pipeline{resolver: resolver, opts: opts}
}

// BuildTables runs the pipeline and returns its tables. The first error
// aborts the run; no partial tables are returned.
func (p *Pipeline) BuildTables(ctx context.Context, header Row, rows []Row) ([]ItemTable, error) {
	res, err := p.Build(ctx, header, rows)
	if err != nil {
		return nil, err
	}
	return res.Tables, nil
}

// Build is BuildTables with run statistics.
func (p *Pipeline) Build(ctx context.Context, header Row, rows []Row) (*Result, error) {
	labels, err := p.labelSet()
	if err != nil {
		return nil, err
	}

	cols, err := ClassifyColumns(header, labels)
	if err != nil {
		return nil, err
	}

	groups, err := GroupRows(rows, cols, p.opts.OnDuplicate)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	parsed := make([][]ItemRecord, 0, len(groups))
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := parseGroup(g, cols)
		if err != nil {
			return nil, err
		}
		records, err = AlignRecords(records, p.opts.OnMismatch)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, records)
		res.Records += len(records)
	}

	remote := p.translateMisses(ctx, parsed, res)

	res.Tables = make([]ItemTable, 0, len(parsed))
	for _, records := range parsed {
		res.Tables = append(res.Tables, p.assemble(records, remote))
	}
	return res, nil
}

func (p *Pipeline) labelSet() (LabelSet, error) {
	if len(p.opts.Labels.Labels) > 0 {
		return p.opts.Labels, nil
	}
	return LabelSetByName(DefaultLabelSet)
}

func parseGroup(g RowGroup, cols Columns) ([]ItemRecord, error) {
	records := make([]ItemRecord, 0, len(g.Rows))
	for _, sr := range g.Rows {
		rec, err := parseRecord(sr, cols)
		if err != nil {
			return nil, &RowError{Line: sr.Line, ItemText: g.ItemText, Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(sr SourceRow, cols Columns) (ItemRecord, error) {
	item, err := garment.ParseItemCode(sr.Row.Text(cols.Item))
	if err != nil {
		return ItemRecord{}, err
	}
	size, err := garment.ParseSizeCode(sr.Row.Text(cols.Size))
	if err != nil {
		return ItemRecord{}, err
	}
	set, err := ParseMeasurements(sr.Row.Text(cols.Measurement))
	if err != nil {
		return ItemRecord{}, err
	}
	return ItemRecord{Line: sr.Line, ItemCode: item, SizeCode: size, Measurements: set}, nil
}

// translateMisses sends the distinct glossary misses among every group's
// header names to the remote translator in one batch.
func (p *Pipeline) translateMisses(ctx context.Context, parsed [][]ItemRecord, res *Result) map[string]string {
	if !p.opts.TranslateMisses {
		return nil
	}

	var misses []string
	seen := make(map[string]bool)
	for _, records := range parsed {
		for _, name := range records[0].Measurements.Names() {
			if seen[name] {
				continue
			}
			seen[name] = true
			if _, ok := p.resolver.Lookup(name); !ok {
				misses = append(misses, name)
			}
		}
	}
	if len(misses) == 0 {
		return nil
	}

	translated, err := p.resolver.ResolveRemote(ctx, misses)
	if err != nil {
		res.RemoteErr = err
		return nil
	}
	if len(translated) != len(misses) {
		res.RemoteErr = fmt.Errorf("remote translation returned %d names for %d", len(translated), len(misses))
		return nil
	}

	out := make(map[string]string, len(misses))
	for i, name := range misses {
		out[name] = translated[i]
	}
	res.RemoteTranslated = len(misses)
	return out
}

func (p *Pipeline) assemble(records []ItemRecord, remote map[string]string) ItemTable {
	first := records[0]
	names := first.Measurements.Names()
	resolved := p.resolver.ResolveLocal(names)
	for i, name := range names {
		if target, ok := remote[name]; ok {
			resolved[i] = target
		}
	}

	header := make([]string, 0, len(resolved)+1)
	header = append(header, p.opts.SizeLabel)
	header = append(header, resolved...)

	body := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, 0, len(rec.Measurements)+1)
		row = append(row, rec.SizeCode.OrdinalLabel())
		row = append(row, rec.Measurements.Values()...)
		body = append(body, row)
	}

	return ItemTable{
		Code:     first.ItemCode.String(),
		SizeCode: first.SizeCode.String(),
		Header:   header,
		Rows:     body,
	}
}

type passThrough struct{}

func (passThrough) ResolveLocal(names []string) []string {
	return append([]string(nil), names...)
}

func (passThrough) Lookup(string) (string, bool) {
	return "", false
}

func (passThrough) ResolveRemote(_ context.Context, names []string) ([]string, error) {
	return append([]string(nil), names...), nil
}
