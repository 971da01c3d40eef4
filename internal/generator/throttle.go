package generator

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"intake/internal/domain"
	"intake/internal/port"
)

// Throttled limits how fast calls reach the wrapped service.
type Throttled struct {
	svc     port.AnswerGenerationService
	limiter *rate.Limiter
}

// NewThrottled wraps svc with a token bucket of the given rate and burst.
func NewThrottled(svc port.AnswerGenerationService, limit rate.Limit, burst int) *Throttled {
	return &Throttled{svc: svc, limiter: rate.NewLimiter(limit, burst)}
}

func (t *Throttled) Generate(ctx context.Context, prompt string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for generator rate limit: %w", err)
	}
	return t.svc.Generate(ctx, prompt)
}

// Unavailable is the generator used when no provider is configured.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) (string, error) {
	return "", domain.ErrGeneratorUnavailable
}
