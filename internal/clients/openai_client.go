package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/spacesedan/redditpersona/config"
	"github.com/tidwall/gjson"
)

const (
	LLM_SYSTEM_PROMPT = "You are an expert psychologist."
	LLM_TEMPERATURE   = 0.7
	LLM_MAX_TOKENS    = 1500
	LLM_TOP_P         = 0.9
)

// Completion is the first choice of a chat completion plus any provider extras.
type Completion struct {
	Content   string
	Model     string
	Citations []string
}

// LLMClient talks to any OpenAI compatible chat completions endpoint.
type LLMClient struct {
	Client   openai.Client
	Provider string
	Model    string
}

func NewLLMClient(cfg config.LLMConfig) *LLMClient {
	baseURL, model := cfg.BaseURL, cfg.Model
	switch cfg.Provider {
	case config.ProviderPerplexity:
		if baseURL == "" {
			baseURL = PERPLEXITY_BASE_URL
		}
		if model == "" {
			model = PPLX_DEFAULT_MODEL
		}
	default:
		if baseURL == "" {
			baseURL = GROQ_BASE_URL
		}
		if model == "" {
			model = GROQ_DEFAULT_MODEL
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = LLM_HTTP_TIMEOUT
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	)

	slog.Info("[LLMClient] LLM client initialized",
		slog.String("provider", cfg.Provider),
		slog.String("model", model),
		slog.Duration("timeout", timeout))

	return &LLMClient{Client: client, Provider: cfg.Provider, Model: model}
}

// Complete sends a single user prompt under the fixed system prompt.
func (lc *LLMClient) Complete(ctx context.Context, prompt string) (*Completion, error) {
	start := time.Now()
	resp, err := lc.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(lc.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(LLM_SYSTEM_PROMPT),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(LLM_TEMPERATURE),
		MaxTokens:   openai.Int(LLM_MAX_TOKENS),
		TopP:        openai.Float(LLM_TOP_P),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			slog.Warn("[LLMClient] Provider returned an error",
				slog.String("provider", lc.Provider),
				slog.Int("status", apiErr.StatusCode))
			body := apiErr.RawJSON()
			if strings.TrimSpace(body) == "" {
				body = apiErr.Message
			}
			return nil, &UpstreamError{Service: "llm", StatusCode: apiErr.StatusCode, Body: body}
		}
		return nil, fmt.Errorf("[LLMClient] completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("[LLMClient] completion returned no choices")
	}

	slog.Info("[LLMClient] Completion received",
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Duration("elapsed", time.Since(start)))

	return &Completion{
		Content:   resp.Choices[0].Message.Content,
		Model:     resp.Model,
		Citations: citationsFromRaw(resp.RawJSON()),
	}, nil
}

// citationsFromRaw reads Perplexity's top level "citations" array, which is not
// part of the OpenAI schema.
func citationsFromRaw(raw string) []string {
	result := gjson.Get(raw, "citations")
	if !result.IsArray() {
		return nil
	}
	var citations []string
	for _, c := range result.Array() {
		if s := strings.TrimSpace(c.String()); s != "" {
			citations = append(citations, s)
		}
	}
	return citations
}
