package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/sizetable/internal/glossary"
)

// Resolver maps measurement names through a glossary and, on request, a
// remote Translator. The glossary is fixed at construction; reloading means
// building a new Resolver.
type Resolver struct {
	glossary   *glossary.Glossary
	translator Translator
	timeout    time.Duration
	log        *slog.Logger

	mu sync.Mutex // serializes remote calls
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTranslator sets the remote fallback.
func WithTranslator(t Translator) Option {
	return func(r *Resolver) { r.translator = t }
}

// WithTimeout bounds each ResolveRemote call. Zero means no extra bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// NewResolver loads the glossary from src. A load failure is logged and
// leaves the resolver with an empty glossary.
func NewResolver(ctx context.Context, src glossary.Source, opts ...Option) *Resolver {
	r := newResolver(glossary.Empty(), opts)

	if src == nil {
		return r
	}

	g, err := src.Load(ctx)
	if err != nil {
		r.log.WarnContext(ctx, "glossary load failed, continuing without glossary",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()),
		)
	}
	if g != nil {
		r.glossary = g
	}

	r.log.InfoContext(ctx, "glossary loaded",
		slog.String("origin", r.glossary.Origin()),
		slog.Int("terms", r.glossary.Len()),
	)
	return r
}

// NewResolverWithGlossary creates a resolver over an already loaded glossary.
func NewResolverWithGlossary(g *glossary.Glossary, opts ...Option) *Resolver {
	if g == nil {
		g = glossary.Empty()
	}
	return newResolver(g, opts)
}

func newResolver(g *glossary.Glossary, opts []Option) *Resolver {
	r := &Resolver{glossary: g, log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "resolver")
	return r
}

// Glossary returns the loaded glossary.
func (r *Resolver) Glossary() *glossary.Glossary {
	return r.glossary
}

// HasTranslator reports whether a remote fallback is configured.
func (r *Resolver) HasTranslator() bool {
	return r.translator != nil
}

// Lookup returns the glossary target for name.
func (r *Resolver) Lookup(name string) (string, bool) {
	return r.glossary.Lookup(name)
}

// ResolveLocal maps each name through the glossary. Misses pass through.
func (r *Resolver) ResolveLocal(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		if target, ok := r.glossary.Lookup(name); ok {
			out[i] = target
		} else {
			out[i] = name
		}
	}
	return out
}

// ResolveRemote translates names with the remote translator. Calls are
// serialized. There is no retry.
func (r *Resolver) ResolveRemote(ctx context.Context, names []string) ([]string, error) {
	if r.translator == nil {
		return nil, fmt.Errorf("%w: no translator configured", ErrRemoteTranslationUnavailable)
	}
	if len(names) == 0 {
		return []string{}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := r.translator.Translate(ctx, names)
	if err != nil {
		return nil, classify(ctx, err)
	}
	if len(out) != len(names) {
		return nil, &FailedError{
			Message: fmt.Sprintf("%s returned %d translations for %d names", r.translator.Name(), len(out), len(names)),
		}
	}
	return out, nil
}

// classify makes sure every error out of ResolveRemote is one of the two
// remote kinds.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, ErrRemoteTranslationFailed) || errors.Is(err, ErrRemoteTranslationUnavailable) {
		return err
	}
	if ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("%w: %w: %w", ErrRemoteTranslationUnavailable, ctx.Err(), err)
	}
	return fmt.Errorf("%w: %w", ErrRemoteTranslationUnavailable, err)
}
