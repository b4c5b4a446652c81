package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mnemo/internal/config"
)

const systemPrompt = "You are a helpful, concise assistant."

// OpenAI generates replies through the chat completions API of any
// OpenAI-compatible endpoint (OpenAI itself, Groq, a local server).
type OpenAI struct {
	name        string
	client      *openai.Client
	model       string
	temperature float64
	hasKey      bool
}

type OpenAIOption func(*openAIOptions)

type openAIOptions struct {
	httpClient  *http.Client
	temperature float64
}

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *openAIOptions) { o.httpClient = c }
}

func WithTemperature(t float64) OpenAIOption {
	return func(o *openAIOptions) { o.temperature = t }
}

// NewOpenAI builds a provider. With an empty apiKey the provider is
// configured but always reports ErrUnavailable.
func NewOpenAI(name, baseURL, apiKey, model string, opts ...OpenAIOption) *OpenAI {
	o := openAIOptions{temperature: 0.4}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(o.httpClient),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(reqOpts...)

	return &OpenAI{
		name:        name,
		client:      &client,
		model:       model,
		temperature: o.temperature,
		hasKey:      apiKey != "",
	}
}

// FromConfig builds the named provider from its [llm.<name>] section.
func FromConfig(name string, cfg *config.LLMConfig, opts ...OpenAIOption) *OpenAI {
	opts = append([]OpenAIOption{WithTemperature(cfg.Temperature)}, opts...)
	return NewOpenAI(name, cfg.BaseURL, cfg.Key(), cfg.Model, opts...)
}

func (o *OpenAI) Name() string { return o.name }

func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	if !o.hasKey {
		return "", fmt.Errorf("%s: no api key: %w", o.name, ErrUnavailable)
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(o.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%s: chat completion: %w", o.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices: %w", o.name, ErrUnavailable)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%s: empty reply: %w", o.name, ErrUnavailable)
	}
	return text, nil
}
