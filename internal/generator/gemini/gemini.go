package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"intake/internal/config"
	"intake/internal/generator"
	"intake/internal/port"
)

const (
	defaultModel = "gemini-2.0-flash"
	maxTokens    = 512
)

func init() {
	generator.RegisterProvider("gemini", func(cfg *config.GeneratorProviderConfig) (port.AnswerGenerationService, error) {
		return NewGenerator(context.Background(), cfg)
	})
}

// Generator implements port.AnswerGenerationService using Google's Gemini API.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a Gemini-backed generator.
func NewGenerator(ctx context.Context, cfg *config.GeneratorProviderConfig) (*Generator, error) {
	return newGenerator(ctx, cfg, "")
}

// NewGeneratorWithEndpoint creates a generator pointing at a custom API endpoint (for testing).
func NewGeneratorWithEndpoint(ctx context.Context, cfg *config.GeneratorProviderConfig, endpoint string) (*Generator, error) {
	return newGenerator(ctx, cfg, endpoint)
}

func newGenerator(ctx context.Context, cfg *config.GeneratorProviderConfig, endpoint string) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: endpoint}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("initializing genai client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(prompt)},
		}},
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(0.2)),
			MaxOutputTokens: maxTokens,
		},
	)
	if err != nil {
		if isRateLimited(err) {
			return "", generator.NewRateLimitError("gemini", err, 0)
		}
		return "", fmt.Errorf("calling gemini API: %w", err)
	}

	var b strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				b.WriteString(part.Text)
			}
			if b.Len() > 0 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty response from gemini API: no candidates")
	}
	return b.String(), nil
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	return strings.Contains(err.Error(), "RESOURCE_EXHAUSTED")
}
