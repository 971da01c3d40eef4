package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"intake/internal/config"
	"intake/internal/generator"
	"intake/internal/port"
)

const (
	defaultModel = "claude-sonnet-4-20250514"
	maxTokens    = 512
)

func init() {
	generator.RegisterProvider("claude", func(cfg *config.GeneratorProviderConfig) (port.AnswerGenerationService, error) {
		return NewGenerator(cfg)
	})
}

// Generator implements port.AnswerGenerationService using the Anthropic Messages API.
type Generator struct {
	client sdk.Client
	model  string
}

// NewGenerator creates a Claude-backed generator from a provider config.
func NewGenerator(cfg *config.GeneratorProviderConfig, opts ...option.RequestOption) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("claude: api key is required")
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(timeout),
	}
	return &Generator{
		client: sdk.NewClient(append(base, opts...)...),
		model:  model,
	}, nil
}

// NewGeneratorWithEndpoint creates a generator pointing at a custom API endpoint (for testing).
func NewGeneratorWithEndpoint(cfg *config.GeneratorProviderConfig, endpoint string) (*Generator, error) {
	return NewGenerator(cfg, option.WithBaseURL(endpoint))
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			retryAfter := 0
			if apiErr.Response != nil {
				retryAfter = generator.ParseRetryAfterHeader(apiErr.Response.Header.Get("Retry-After"))
			}
			return "", generator.NewRateLimitError("claude", err, retryAfter)
		}
		return "", fmt.Errorf("calling anthropic API: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty response from anthropic API")
	}
	return b.String(), nil
}
