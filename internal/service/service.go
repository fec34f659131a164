// Package service runs the table pipeline for uploaded sheets and owns the
// live glossary resolver.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sizetable/internal/core"
	"github.com/JonMunkholm/sizetable/internal/glossary"
	"github.com/JonMunkholm/sizetable/internal/logging"
	"github.com/JonMunkholm/sizetable/internal/metrics"
	"github.com/JonMunkholm/sizetable/internal/sheet"
	"github.com/JonMunkholm/sizetable/internal/translate"
)

// ErrStoreUnavailable is returned by ImportGlossary without a database.
var ErrStoreUnavailable = errors.New("glossary store not configured")

// GlossaryStore persists imported glossary terms.
type GlossaryStore interface {
	Import(ctx context.Context, terms []glossary.Term) (int64, error)
	Load(ctx context.Context) (*glossary.Glossary, error)
}

// GlossaryPublisher mirrors the glossary into a shared cache.
type GlossaryPublisher interface {
	Publish(ctx context.Context, g *glossary.Glossary) error
}

// Options configures a Service.
type Options struct {
	Pipeline         core.Options
	Sheet            sheet.Options
	RunTimeout       time.Duration
	MaxConcurrent    int
	MaxWait          time.Duration
	TranslateTimeout time.Duration
	SourceLanguage   string
	TargetLanguage   string

	Source     glossary.Source      // glossary loader for Reload
	Translator translate.Translator // optional remote fallback
	Store      GlossaryStore        // optional
	Publisher  GlossaryPublisher    // optional

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Service builds size tables. It is safe for concurrent use.
type Service struct {
	opts     Options
	resolver atomic.Pointer[translate.Resolver]
	limiter  *RunLimiter
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// RunResult is the outcome of one Process call.
type RunResult struct {
	RunID            string           `json:"run_id"`
	FileName         string           `json:"file_name"`
	SheetName        string           `json:"sheet_name"`
	Tables           []core.ItemTable `json:"tables"`
	Records          int              `json:"records"`
	RemoteTranslated int              `json:"remote_translated"`
	RemoteError      string           `json:"remote_error,omitempty"`
	Duration         time.Duration    `json:"-"`
	DurationMS       int64            `json:"duration_ms"`
}

// GlossaryInfo describes the active glossary.
type GlossaryInfo struct {
	Terms          int    `json:"terms"`
	Origin         string `json:"origin"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Remote         string `json:"remote"`
}

// New creates a Service and loads the glossary once.
func New(ctx context.Context, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}

	s := &Service{
		opts:    opts,
		limiter: NewRunLimiter(opts.MaxConcurrent, opts.MaxWait),
		metrics: opts.Metrics,
		logger:  opts.Logger.With("component", "service"),
	}
	s.install(s.loadResolver(ctx))
	return s
}

func (s *Service) loadResolver(ctx context.Context) *translate.Resolver {
	return translate.NewResolver(ctx, s.opts.Source,
		translate.WithTranslator(s.opts.Translator),
		translate.WithTimeout(s.opts.TranslateTimeout),
		translate.WithLogger(s.opts.Logger),
	)
}

func (s *Service) install(r *translate.Resolver) {
	s.resolver.Store(r)
	g := r.Glossary()
	s.metrics.ObserveGlossary(g.Origin(), g.Len())
}

// Resolver returns the resolver in use.
func (s *Service) Resolver() *translate.Resolver {
	return s.resolver.Load()
}

// Limiter exposes the run limiter for shutdown and status.
func (s *Service) Limiter() *RunLimiter {
	return s.limiter
}

// Process decodes one uploaded sheet and builds its tables.
func (s *Service) Process(ctx context.Context, fileName string, r io.Reader) (*RunResult, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithFields(ctx, "file", fileName)

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.RunsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		logger.Warn("run rejected", "error", err)
		return nil, err
	}
	defer s.limiter.Release()
	s.metrics.ActiveRuns.Inc()
	defer s.metrics.ActiveRuns.Dec()

	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	logger.Info("run started")

	result, err := s.run(ctx, fileName, r)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveRun(metrics.OutcomeError, 0, elapsed)
		logger.Warn("run failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, err
	}

	result.RunID = runID
	result.Duration = elapsed
	result.DurationMS = elapsed.Milliseconds()
	s.metrics.ObserveRun(metrics.OutcomeOK, len(result.Tables), elapsed)

	logger.Info("run completed",
		"tables", len(result.Tables),
		"records", result.Records,
		"duration_ms", result.DurationMS,
	)
	return result, nil
}

func (s *Service) run(ctx context.Context, fileName string, r io.Reader) (*RunResult, error) {
	sh, err := sheet.Decode(r, fileName, s.opts.Sheet)
	if err != nil {
		return nil, err
	}

	pipeline := core.NewPipeline(s.Resolver(), s.opts.Pipeline)
	res, err := pipeline.Build(ctx, sh.Header, sh.Rows)
	if err != nil {
		return nil, err
	}

	out := &RunResult{
		FileName:         fileName,
		SheetName:        sh.Name,
		Tables:           res.Tables,
		Records:          res.Records,
		RemoteTranslated: res.RemoteTranslated,
	}

	switch {
	case res.RemoteErr != nil:
		s.metrics.ObserveRemote(res.RemoteErr)
		out.RemoteError = remoteErrorText(res.RemoteErr)
		logging.FromContext(ctx).Warn("remote translation failed, names kept untranslated",
			"file", fileName, "error", res.RemoteErr)
	case res.RemoteTranslated > 0:
		s.metrics.ObserveRemote(nil)
	}
	return out, nil
}

// remoteErrorText is the user message of a degraded remote call, followed by
// the upstream reply when there is one.
func remoteErrorText(err error) string {
	msg := core.MapError(err).Message
	if upstream := translate.UpstreamMessage(err); upstream != "" {
		return msg + ": " + upstream
	}
	return msg
}

// Translate sends names straight to the remote translator.
func (s *Service) Translate(ctx context.Context, names []string) ([]string, error) {
	out, err := s.Resolver().ResolveRemote(ctx, names)
	s.metrics.ObserveRemote(err)
	return out, err
}

// Reload loads the glossary again and swaps the resolver. Runs in flight
// keep the resolver they started with.
func (s *Service) Reload(ctx context.Context) (GlossaryInfo, error) {
	r := s.loadResolver(ctx)
	s.install(r)
	info := s.Glossary()
	s.logger.Info("glossary reloaded", "origin", info.Origin, "terms", info.Terms)
	return info, nil
}

// Glossary describes the active glossary.
func (s *Service) Glossary() GlossaryInfo {
	r := s.Resolver()
	remote := "none"
	if r.HasTranslator() {
		remote = s.opts.Translator.Name()
	}
	return GlossaryInfo{
		Terms:          r.Glossary().Len(),
		Origin:         r.Glossary().Origin(),
		SourceLanguage: s.opts.SourceLanguage,
		TargetLanguage: s.opts.TargetLanguage,
		Remote:         remote,
	}
}

// ImportGlossary stores CSV terms, mirrors the merged glossary to the
// publisher when one is set, and reloads.
func (s *Service) ImportGlossary(ctx context.Context, r io.Reader) (int64, error) {
	if s.opts.Store == nil {
		return 0, ErrStoreUnavailable
	}

	terms, err := glossary.ReadTerms(r)
	if err != nil {
		return 0, err
	}

	n, err := s.opts.Store.Import(ctx, terms)
	if err != nil {
		return 0, err
	}
	s.logger.Info("glossary imported", "terms", n)

	if s.opts.Publisher != nil {
		merged, err := s.opts.Store.Load(ctx)
		if err != nil {
			return n, fmt.Errorf("reload imported glossary: %w", err)
		}
		if err := s.opts.Publisher.Publish(ctx, merged); err != nil {
			// The database holds the terms; the cache catches up on the next import.
			s.logger.Warn("glossary publish failed", "error", err)
		}
	}

	if _, err := s.Reload(ctx); err != nil {
		return n, err
	}
	return n, nil
}
