// Package translate resolves measurement names to the target language using a
// glossary, with an optional remote translation fallback.
package translate

import "context"

// Translator translates a batch of texts. The result has one entry per input,
// in input order.
//
// Implementations report rejected requests as *FailedError and unreachable
// services as errors wrapping ErrRemoteTranslationUnavailable.
type Translator interface {
	Name() string
	Translate(ctx context.Context, texts []string) ([]string, error)
}
