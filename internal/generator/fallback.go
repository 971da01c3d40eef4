package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"intake/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackService tries providers in order, skipping those with open circuits.
// It implements port.AnswerGenerationService.
type FallbackService struct {
	services []port.AnswerGenerationService
	circuits []*circuitState
	names    []string
	logger   *zap.Logger
	now      func() time.Time
}

// NewFallbackService creates a FallbackService from an ordered list of providers and their names.
func NewFallbackService(services []port.AnswerGenerationService, names []string, logger *zap.Logger) *FallbackService {
	circuits := make([]*circuitState, len(services))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackService{
		services: services,
		circuits: circuits,
		names:    names,
		logger:   logger,
		now:      time.Now,
	}
}

func (f *FallbackService) Generate(ctx context.Context, prompt string) (string, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, svc := range f.services {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Debug("generator: skipping provider, circuit open",
				zap.String("provider", f.names[i]),
				zap.Time("reset_at", resetAt),
			)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := svc.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}

		f.logger.Warn("generator: provider failed", zap.String("provider", f.names[i]), zap.Error(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}

		if ctx.Err() != nil {
			return "", fmt.Errorf("generation cancelled: %w", ctx.Err())
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return "", NewRateLimitError("all", errors.New("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return "", fmt.Errorf("all providers failed: %w", lastErr)
}
