package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/sizetable/internal/config"
)

const googleClientTimeout = 30 * time.Second

// NewFromConfig builds the configured Translator. Provider "none" returns
// nil, which leaves the resolver glossary-only. The google provider uses
// GOOGLE_ACCESS_TOKEN when set and Application Default Credentials otherwise.
func NewFromConfig(cfg config.TranslateConfig, logger *slog.Logger) (Translator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case "google":
		// Token refreshes run for the life of the process.
		ts, err := GoogleTokenSource(context.Background(), cfg.GoogleAccessToken)
		if err != nil {
			return nil, err
		}
		return NewGoogleTranslator(GoogleConfig{
			Endpoint:       cfg.GoogleEndpoint,
			ProjectID:      cfg.GoogleProject,
			Location:       cfg.GoogleLocation,
			GlossaryID:     cfg.GoogleGlossary,
			SourceLanguage: cfg.SourceLanguage,
			TargetLanguage: cfg.TargetLanguage,
		}, NewGoogleHTTPClient(ts, googleClientTimeout), logger), nil
	case "openai":
		return NewOpenAITranslator(OpenAIConfig{
			APIKey:         cfg.OpenAIKey,
			Model:          cfg.OpenAIModel,
			BaseURL:        cfg.OpenAIBaseURL,
			SourceLanguage: cfg.SourceLanguage,
			TargetLanguage: cfg.TargetLanguage,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown translate provider %q", cfg.Provider)
	}
}
