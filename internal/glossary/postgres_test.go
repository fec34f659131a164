package glossary

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importColumns = []string{"source_label", "target_label"}

func newMockStore(t *testing.T) (*PGStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPGStore(mock), mock
}

func TestPGStore_EnsureSchema(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS glossary_terms`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_Load(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr bool
		want    map[string]string
	}{
		{
			name: "rows",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(importColumns).
					AddRow("ヒップ", "臀围").
					AddRow("着丈", "衣长")
				mock.ExpectQuery(`SELECT source_label, target_label FROM glossary_terms`).
					WillReturnRows(rows)
			},
			want: map[string]string{"ヒップ": "臀围", "着丈": "衣长"},
		},
		{
			name: "empty table",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT`).WillReturnRows(pgxmock.NewRows(importColumns))
			},
			want: map[string]string{},
		},
		{
			name: "query error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setup(mock)

			g, err := store.Load(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "glossary: query terms")
			} else {
				require.NoError(t, err)
				assert.Equal(t, "postgres", g.Origin())
				assert.Equal(t, len(tt.want), g.Len())
				for src, dst := range tt.want {
					got, ok := g.Lookup(src)
					assert.True(t, ok, src)
					assert.Equal(t, dst, got)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPGStore_Import(t *testing.T) {
	terms := []Term{
		{Source: "ヒップ", Target: "臀围"},
		{Source: "着丈", Target: "衣长"},
		{Source: "ヒップ", Target: "臀宽"},
	}

	tests := []struct {
		name    string
		terms   []Term
		setup   func(mock pgxmock.PgxPoolIface)
		want    int64
		wantErr string
	}{
		{
			name:  "commits",
			terms: terms,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`CREATE TEMP TABLE glossary_import`).
					WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
				mock.ExpectCopyFrom(pgx.Identifier{"glossary_import"}, importColumns).
					WillReturnResult(2)
				mock.ExpectExec(`INSERT INTO glossary_terms`).
					WillReturnResult(pgxmock.NewResult("INSERT", 2))
				mock.ExpectCommit()
			},
			want: 2,
		},
		{
			name:  "copy failure rolls back",
			terms: terms,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`CREATE TEMP TABLE glossary_import`).
					WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
				mock.ExpectCopyFrom(pgx.Identifier{"glossary_import"}, importColumns).
					WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			wantErr: "glossary: copy terms",
		},
		{
			name:  "upsert failure rolls back",
			terms: terms,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`CREATE TEMP TABLE glossary_import`).
					WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
				mock.ExpectCopyFrom(pgx.Identifier{"glossary_import"}, importColumns).
					WillReturnResult(2)
				mock.ExpectExec(`INSERT INTO glossary_terms`).
					WillReturnError(errors.New("deadlock detected"))
				mock.ExpectRollback()
			},
			wantErr: "glossary: upsert terms",
		},
		{
			name:  "begin failure",
			terms: terms,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin().WillReturnError(errors.New("too many connections"))
			},
			wantErr: "glossary: begin import",
		},
		{
			name:  "no terms skips the database",
			terms: nil,
			setup: func(mock pgxmock.PgxPoolIface) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setup(mock)

			n, err := store.Import(context.Background(), tt.terms)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, n)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDedupeTerms(t *testing.T) {
	t.Parallel()

	got := dedupeTerms([]Term{
		{Source: "着丈", Target: "衣长"},
		{Source: "ヒップ", Target: "臀围"},
		{Source: "着丈", Target: "后中长"},
		{Source: "ヒップ", Target: "臀宽"},
	})

	assert.Equal(t, []Term{
		{Source: "ヒップ", Target: "臀宽"},
		{Source: "着丈", Target: "后中长"},
	}, got)
}
