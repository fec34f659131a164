package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/sizetable/internal/config"
	"github.com/JonMunkholm/sizetable/internal/core"
	"github.com/JonMunkholm/sizetable/internal/logging"
	"github.com/JonMunkholm/sizetable/internal/service"
	"github.com/JonMunkholm/sizetable/internal/translate"
)

// env bundles what every command needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *service.Service
	close  func()
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// stdout carries results only
	logger := logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	deps, closeDeps, err := service.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	svc, err := service.Build(ctx, cfg, deps)
	if err != nil {
		closeDeps()
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, svc: svc, close: closeDeps}, nil
}

func formatError(err error) string {
	if msg := core.FormatUserError(err); msg != "" && core.IsUserFacing(err) {
		return fmt.Sprintf("error: %v\n%s", err, msg)
	}
	return fmt.Sprintf("error: %v", err)
}

// fileTables is one entry of the build output.
type fileTables struct {
	File   string           `json:"file"`
	RunID  string           `json:"run_id"`
	Tables []core.ItemTable `json:"tables"`
}

func newBuildCmd() *cobra.Command {
	var outDir string
	var jobs int
	var indent bool

	cmd := &cobra.Command{
		Use:   "build FILE...",
		Short: "Build size tables from .xlsx or .csv files",
		Long: `Build size tables from one or more spreadsheets.

Files are processed concurrently. The first failing file aborts the run.
Without --out, a JSON array with one entry per file is written to stdout in
argument order. With --out, each file's tables go to DIR/<name>.json.

Example: sizetable build spring.xlsx summer.csv --jobs 4 --indent`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			results, err := buildFiles(cmd.Context(), e.svc, args, clampJobs(jobs, e.cfg.Upload.MaxConcurrent))
			if err != nil {
				return err
			}

			if outDir != "" {
				return writeOutDir(outDir, results, indent)
			}
			return writeJSON(cmd.OutOrStdout(), results, indent)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write one JSON file per input into this directory")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Files processed in parallel, at most UPLOAD_MAX_CONCURRENT (default: UPLOAD_MAX_CONCURRENT)")
	cmd.Flags().BoolVar(&indent, "indent", false, "Indent JSON output")
	return cmd
}

// clampJobs bounds --jobs by the run limiter's capacity; 0 means the full capacity.
func clampJobs(jobs, limit int) int {
	if jobs <= 0 || jobs > limit {
		return limit
	}
	return jobs
}

func buildFiles(ctx context.Context, svc *service.Service, paths []string, jobs int) ([]fileTables, error) {
	results := make([]fileTables, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := svc.Process(gctx, filepath.Base(path), f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = fileTables{File: path, RunID: res.RunID, Tables: res.Tables}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writeOutDir(dir string, results []fileTables, indent bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, r := range results {
		name := strings.TrimSuffix(filepath.Base(r.File), filepath.Ext(r.File)) + ".json"
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if err := writeJSON(f, r.Tables, indent); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func newTranslateCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "translate NAME...",
		Short: "Translate measurement names with the glossary",
		Long: `Print each name with its glossary translation, tab separated.

With --remote, names missing from the glossary are sent to the configured
translation provider (TRANSLATE_PROVIDER) in one batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			return translateNames(cmd.Context(), cmd.OutOrStdout(), e.svc, args, remote)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Translate glossary misses remotely")
	return cmd
}

func translateNames(ctx context.Context, w io.Writer, svc *service.Service, names []string, remote bool) error {
	resolver := svc.Resolver()
	if remote && !resolver.HasTranslator() {
		return fmt.Errorf("--remote: %w", translate.ErrRemoteTranslationUnavailable)
	}
	out := resolver.ResolveLocal(names)
	origin := make([]string, len(names))

	var misses []string
	var missIdx []int
	for i, name := range names {
		if _, ok := resolver.Lookup(name); ok {
			origin[i] = "glossary"
			continue
		}
		origin[i] = "unchanged"
		misses = append(misses, name)
		missIdx = append(missIdx, i)
	}

	if remote && len(misses) > 0 {
		translated, err := svc.Translate(ctx, misses)
		if err != nil {
			return err
		}
		for j, i := range missIdx {
			out[i] = translated[j]
			origin[i] = "remote"
		}
	}

	for i, name := range names {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", name, out[i], origin[i]); err != nil {
			return err
		}
	}
	return nil
}

func newGlossaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "Inspect and manage the glossary",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "import FILE",
			Short: "Upsert a source,target CSV into the database glossary",
			Long: `Upsert a source,target CSV (with header row) into the glossary_terms table.
Requires DATABASE_URL. When REDIS_ADDR is set, the merged glossary is also
published to the Redis hash.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := setup(cmd.Context())
				if err != nil {
					return err
				}
				defer e.close()

				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				n, err := e.svc.ImportGlossary(cmd.Context(), f)
				if err != nil {
					return err
				}
				info := e.svc.Glossary()
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d terms; active glossary %s has %d terms\n", n, info.Origin, info.Terms)
				return nil
			},
		},
		&cobra.Command{
			Use:   "dump",
			Short: "Write the active glossary as CSV",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := setup(cmd.Context())
				if err != nil {
					return err
				}
				defer e.close()

				w := csv.NewWriter(cmd.OutOrStdout())
				w.Write([]string{"source", "target"})
				for _, t := range e.svc.Resolver().Glossary().Terms() {
					w.Write([]string{t.Source, t.Target})
				}
				w.Flush()
				return w.Error()
			},
		},
	)
	return cmd
}
