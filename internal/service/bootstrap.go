package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/sizetable/internal/config"
	"github.com/JonMunkholm/sizetable/internal/core"
	_ "github.com/JonMunkholm/sizetable/internal/core/labels" // register label sets
	"github.com/JonMunkholm/sizetable/internal/glossary"
	"github.com/JonMunkholm/sizetable/internal/metrics"
	"github.com/JonMunkholm/sizetable/internal/sheet"
	"github.com/JonMunkholm/sizetable/internal/translate"
)

// Deps are the optional connections a Service can use.
type Deps struct {
	Pool    *pgxpool.Pool         // Postgres glossary store
	Redis   redis.UniversalClient // Redis glossary cache
	HTTP    *http.Client          // glossary URL downloads
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// PipelineOptions converts the pipeline config section.
func PipelineOptions(cfg config.PipelineConfig) (core.Options, error) {
	labels, err := core.LabelSetByName(cfg.LabelSet)
	if err != nil {
		return core.Options{}, err
	}
	dup, ok := core.ParseDuplicatePolicy(cfg.OnDuplicate)
	if !ok {
		return core.Options{}, fmt.Errorf("unknown duplicate policy %q", cfg.OnDuplicate)
	}
	mismatch, ok := core.ParseMismatchPolicy(cfg.OnMismatch)
	if !ok {
		return core.Options{}, fmt.Errorf("unknown mismatch policy %q", cfg.OnMismatch)
	}
	return core.Options{
		SizeLabel:       cfg.SizeLabel,
		Labels:          labels,
		OnDuplicate:     dup,
		OnMismatch:      mismatch,
		TranslateMisses: cfg.TranslateMisses,
	}, nil
}

// GlossarySources builds the loaders named in cfg.Glossary.Sources, in
// order. Sources without configuration or connection are skipped.
func GlossarySources(cfg *config.Config, deps Deps) []glossary.Source {
	var sources []glossary.Source
	for _, name := range cfg.Glossary.Sources {
		switch strings.ToLower(name) {
		case "postgres":
			if deps.Pool != nil {
				sources = append(sources, glossary.NewPGStore(deps.Pool))
			}
		case "redis":
			if deps.Redis != nil {
				sources = append(sources, glossary.NewRedisSource(deps.Redis, cfg.Redis.GlossaryKey))
			}
		case "file":
			if cfg.Glossary.Path != "" {
				sources = append(sources, glossary.FileSource{Path: cfg.Glossary.Path})
			}
		case "url":
			if cfg.Glossary.URL != "" {
				sources = append(sources, glossary.NewURLSource(cfg.Glossary.URL, deps.HTTP))
			}
		case "embedded":
			sources = append(sources, glossary.EmbeddedSource{})
		}
	}
	return sources
}

// timedSource bounds every load with the configured timeout.
type timedSource struct {
	glossary.Source
	cfg config.GlossaryConfig
}

func (t timedSource) Load(ctx context.Context) (*glossary.Glossary, error) {
	if t.cfg.LoadTimeout <= 0 {
		return t.Source.Load(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, t.cfg.LoadTimeout)
	defer cancel()
	return t.Source.Load(ctx)
}

// Build wires a Service from configuration.
func Build(ctx context.Context, cfg *config.Config, deps Deps) (*Service, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	pipelineOpts, err := PipelineOptions(cfg.Pipeline)
	if err != nil {
		return nil, err
	}

	tr, err := translate.NewFromConfig(cfg.Translate, deps.Logger)
	if err != nil {
		return nil, err
	}

	opts := Options{
		Pipeline: pipelineOpts,
		Sheet: sheet.Options{
			SheetName: cfg.Pipeline.SheetName,
			MaxBytes:  cfg.Upload.MaxFileSize,
		},
		RunTimeout:       cfg.Upload.Timeout,
		MaxConcurrent:    cfg.Upload.MaxConcurrent,
		MaxWait:          cfg.Upload.MaxWaitTime,
		TranslateTimeout: cfg.Translate.Timeout,
		SourceLanguage:   cfg.Translate.SourceLanguage,
		TargetLanguage:   cfg.Translate.TargetLanguage,
		Source: timedSource{
			Source: glossary.NewChain(deps.Logger, GlossarySources(cfg, deps)...),
			cfg:    cfg.Glossary,
		},
		Translator: tr,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
	}
	if deps.Pool != nil {
		opts.Store = glossary.NewPGStore(deps.Pool)
	}
	if deps.Redis != nil {
		opts.Publisher = glossary.NewRedisSource(deps.Redis, cfg.Redis.GlossaryKey)
	}

	return New(ctx, opts), nil
}
