package glossary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Chain tries sources in order. The first source returning a non-empty
// glossary wins. Failed sources are logged and skipped.
type Chain struct {
	sources []Source
	logger  *slog.Logger
}

// NewChain creates a chain over sources.
func NewChain(logger *slog.Logger, sources ...Source) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{sources: sources, logger: logger.With("component", "glossary")}
}

func (c *Chain) Name() string { return "chain" }

// Load returns the first non-empty glossary. When every source fails, Load
// returns an empty glossary together with the joined errors; when sources
// succeed but are all empty it returns an empty glossary and nil.
func (c *Chain) Load(ctx context.Context) (*Glossary, error) {
	var errs []error
	for _, src := range c.sources {
		g, err := src.Load(ctx)
		if err != nil {
			c.logger.Warn("glossary source failed", "source", src.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if g.Len() == 0 {
			c.logger.Debug("glossary source empty", "source", src.Name())
			continue
		}
		c.logger.Info("glossary loaded", "source", src.Name(), "terms", g.Len())
		return g, nil
	}

	if len(errs) > 0 && len(errs) == len(c.sources) {
		return Empty(), errors.Join(errs...)
	}
	return Empty(), nil
}
