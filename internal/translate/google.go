package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultGoogleEndpoint is the Cloud Translation v3 REST root.
const DefaultGoogleEndpoint = "https://translation.googleapis.com/v3"

// GoogleScope is the OAuth scope of the Cloud Translation API.
const GoogleScope = "https://www.googleapis.com/auth/cloud-translation"

const maxGoogleResponseBytes = 4 << 20

// GoogleConfig configures a GoogleTranslator.
type GoogleConfig struct {
	Endpoint       string // DefaultGoogleEndpoint when empty
	ProjectID      string
	Location       string
	GlossaryID     string // optional server-side glossary
	SourceLanguage string
	TargetLanguage string
}

// GoogleTranslator calls the Cloud Translation v3 translateText method.
type GoogleTranslator struct {
	cfg        GoogleConfig
	httpClient *http.Client
	log        *slog.Logger
}

// GoogleTokenSource returns the credentials for translateText calls. A
// non-empty accessToken is used as is and never refreshed. Otherwise
// Application Default Credentials are looked up (GOOGLE_APPLICATION_CREDENTIALS,
// gcloud user credentials, or the metadata server) and refreshed on expiry.
// ctx is used for every refresh and must outlive the translator.
func GoogleTokenSource(ctx context.Context, accessToken string) (oauth2.TokenSource, error) {
	if accessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}), nil
	}
	ts, err := google.DefaultTokenSource(ctx, GoogleScope)
	if err != nil {
		return nil, fmt.Errorf("google: application default credentials: %w", err)
	}
	return ts, nil
}

// NewGoogleHTTPClient returns a client that authorizes each request with a
// token from ts. The token is cached until it expires.
func NewGoogleHTTPClient(ts oauth2.TokenSource, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
		},
	}
}

// NewGoogleTranslator creates a GoogleTranslator. client must authorize its
// requests, see NewGoogleHTTPClient. A nil client sends unauthenticated
// requests with a 30s timeout.
func NewGoogleTranslator(cfg GoogleConfig, client *http.Client, logger *slog.Logger) *GoogleTranslator {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultGoogleEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Location == "" {
		cfg.Location = "global"
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleTranslator{
		cfg:        cfg,
		httpClient: client,
		log:        logger.With("adapter", "google"),
	}
}

func (g *GoogleTranslator) Name() string { return "google" }

type googleRequest struct {
	SourceLanguageCode string                `json:"sourceLanguageCode"`
	TargetLanguageCode string                `json:"targetLanguageCode"`
	Contents           []string              `json:"contents"`
	MimeType           string                `json:"mimeType"`
	GlossaryConfig     *googleGlossaryConfig `json:"glossaryConfig,omitempty"`
}

type googleGlossaryConfig struct {
	Glossary string `json:"glossary"`
}

type googleTranslation struct {
	TranslatedText string `json:"translatedText"`
}

type googleResponse struct {
	Translations         []googleTranslation `json:"translations"`
	GlossaryTranslations []googleTranslation `json:"glossaryTranslations"`
}

type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *GoogleTranslator) parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", g.cfg.ProjectID, g.cfg.Location)
}

// Translate sends texts in one translateText request. Glossary translations
// are preferred when a glossary is configured.
func (g *GoogleTranslator) Translate(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	body := googleRequest{
		SourceLanguageCode: g.cfg.SourceLanguage,
		TargetLanguageCode: g.cfg.TargetLanguage,
		Contents:           texts,
		MimeType:           "text/plain",
	}
	if g.cfg.GlossaryID != "" {
		body.GlossaryConfig = &googleGlossaryConfig{
			Glossary: g.parent() + "/glossaries/" + g.cfg.GlossaryID,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("google: encode request: %w", err)
	}

	reqURL := g.cfg.Endpoint + "/" + g.parent() + ":translateText"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("google: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if g.cfg.ProjectID != "" {
		req.Header.Set("x-goog-user-project", g.cfg.ProjectID)
	}

	g.log.DebugContext(ctx, "google request", slog.Int("texts", len(texts)))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: %w: %w", ErrRemoteTranslationUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxGoogleResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("google: read body: %w: %w", ErrRemoteTranslationUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("google: %w: status %d", ErrRemoteTranslationUnavailable, resp.StatusCode)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		var ge googleError
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &ge) == nil && ge.Error.Message != "" {
			msg = ge.Error.Message
		}
		g.log.WarnContext(ctx, "google rejected request",
			slog.Int("status", resp.StatusCode),
			slog.String("message", msg),
		)
		return nil, &FailedError{Message: msg}
	}

	var out googleResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &FailedError{Message: "google: decode response: " + err.Error()}
	}

	list := out.Translations
	if g.cfg.GlossaryID != "" && len(out.GlossaryTranslations) > 0 {
		list = out.GlossaryTranslations
	}

	result := make([]string, len(list))
	for i, tr := range list {
		result[i] = tr.TranslatedText
	}

	g.log.DebugContext(ctx, "google response",
		slog.Int("status", resp.StatusCode),
		slog.Int("translations", len(result)),
	)
	return result, nil
}
