package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAITranslator.
type OpenAIConfig struct {
	APIKey         string
	Model          string // openai.GPT4oMini when empty
	BaseURL        string // optional, for proxies and tests
	SourceLanguage string
	TargetLanguage string
}

// OpenAITranslator translates labels with a chat completion in JSON mode.
type OpenAITranslator struct {
	client *openai.Client
	cfg    OpenAIConfig
	log    *slog.Logger
}

// NewOpenAITranslator creates an OpenAITranslator.
func NewOpenAITranslator(cfg OpenAIConfig, logger *slog.Logger) *OpenAITranslator {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAITranslator{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		log:    logger.With("adapter", "openai"),
	}
}

func (o *OpenAITranslator) Name() string { return "openai" }

type openAITranslations struct {
	Translations []string `json:"translations"`
}

func (o *OpenAITranslator) systemPrompt() string {
	return fmt.Sprintf(`You translate garment measurement labels from %s to %s.
You receive a JSON array of labels. Reply with a JSON object {"translations": [...]}
holding exactly one translation per label, in the same order.
Use the terms a clothing size chart would use. Do not add explanations.`,
		o.cfg.SourceLanguage, o.cfg.TargetLanguage)
}

// Translate sends texts in one chat completion request.
func (o *OpenAITranslator) Translate(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	input, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("openai: encode labels: %w", err)
	}

	o.log.DebugContext(ctx, "openai request", slog.Int("texts", len(texts)), slog.String("model", o.cfg.Model))

	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: o.systemPrompt()},
				{Role: openai.ChatMessageRoleUser, Content: string(input)},
			},
			Temperature:    0,
			ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		},
	)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &FailedError{Message: "openai: empty response"}
	}

	var out openAITranslations
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return nil, &FailedError{Message: "openai: decode translations: " + err.Error()}
	}

	o.log.DebugContext(ctx, "openai response",
		slog.Int("translations", len(out.Translations)),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return out.Translations, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if isAuthStatus(apiErr.HTTPStatusCode) {
			return fmt.Errorf("openai: %w: %s", ErrRemoteTranslationUnavailable, apiErr.Message)
		}
		return &FailedError{Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		if isAuthStatus(reqErr.HTTPStatusCode) {
			return fmt.Errorf("openai: %w: status %d", ErrRemoteTranslationUnavailable, reqErr.HTTPStatusCode)
		}
		return &FailedError{Message: fmt.Sprintf("status %d", reqErr.HTTPStatusCode)}
	}

	return fmt.Errorf("openai: %w: %w", ErrRemoteTranslationUnavailable, err)
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
