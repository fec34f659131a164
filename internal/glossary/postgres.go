package glossary

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PGStore.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
}

// Pool is what PGStore holds: a DBTX that can open transactions.
// Satisfied by *pgxpool.Pool.
type Pool interface {
	DBTX
	Begin(context.Context) (pgx.Tx, error)
}

const (
	createTermsTable = `CREATE TABLE IF NOT EXISTS glossary_terms (
	source_label TEXT PRIMARY KEY,
	target_label TEXT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	selectTerms = `SELECT source_label, target_label FROM glossary_terms ORDER BY source_label`

	createStaging = `CREATE TEMP TABLE glossary_import (
	source_label TEXT,
	target_label TEXT
) ON COMMIT DROP`

	upsertFromStaging = `INSERT INTO glossary_terms (source_label, target_label)
SELECT source_label, target_label
FROM glossary_import
ON CONFLICT (source_label) DO UPDATE
SET target_label = EXCLUDED.target_label, updated_at = now()`
)

// PGStore keeps glossary terms in the glossary_terms table.
type PGStore struct {
	pool Pool
}

// NewPGStore creates a store over pool.
func NewPGStore(pool Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Name() string { return "postgres" }

// EnsureSchema creates the glossary_terms table if it does not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTermsTable); err != nil {
		return fmt.Errorf("glossary: create table: %w", err)
	}
	return nil
}

// Load reads every term.
func (s *PGStore) Load(ctx context.Context) (*Glossary, error) {
	terms, err := loadTerms(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	return FromTerms(terms, s.Name()), nil
}

func loadTerms(ctx context.Context, db DBTX) ([]Term, error) {
	rows, err := db.Query(ctx, selectTerms)
	if err != nil {
		return nil, fmt.Errorf("glossary: query terms: %w", err)
	}

	terms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Term, error) {
		var t Term
		err := row.Scan(&t.Source, &t.Target)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("glossary: scan terms: %w", err)
	}
	return terms, nil
}

// Import upserts terms in one transaction. Rows are streamed into a
// temporary table with COPY and merged into glossary_terms; for a source
// repeated in terms, the last row wins. Returns the number of rows copied.
func (s *PGStore) Import(ctx context.Context, terms []Term) (int64, error) {
	if len(terms) == 0 {
		return 0, nil
	}
	terms = dedupeTerms(terms)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("glossary: begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createStaging); err != nil {
		return 0, fmt.Errorf("glossary: create staging: %w", err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"glossary_import"},
		[]string{"source_label", "target_label"},
		pgx.CopyFromSlice(len(terms), func(i int) ([]any, error) {
			return []any{terms[i].Source, terms[i].Target}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("glossary: copy terms: %w", err)
	}

	if _, err := tx.Exec(ctx, upsertFromStaging); err != nil {
		return 0, fmt.Errorf("glossary: upsert terms: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("glossary: commit import: %w", err)
	}
	return copied, nil
}

// dedupeTerms keeps the last target for each source, sorted by source.
func dedupeTerms(terms []Term) []Term {
	return FromTerms(terms, "").Terms()
}
