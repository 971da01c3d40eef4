package generator

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"intake/internal/config"
	"intake/internal/port"
)

// ProviderFactory creates an AnswerGenerationService from a provider config.
type ProviderFactory func(cfg *config.GeneratorProviderConfig) (port.AnswerGenerationService, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// RegisteredProviders lists registered provider names in sorted order.
func RegisteredProviders() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider creates an AnswerGenerationService using the registered factory.
func NewProvider(cfg *config.GeneratorProviderConfig) (port.AnswerGenerationService, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig assembles the configured providers into one service: a fallback chain
// when more than one is configured, throttled to RequestsPerMinute. With no providers
// configured every call fails with ErrGeneratorUnavailable.
func NewFromConfig(cfg *config.GeneratorConfig, logger *zap.Logger) (port.AnswerGenerationService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	configs := cfg.Providers()
	if len(configs) == 0 {
		logger.Warn("generator: no providers configured, AI suggestions will use fallback answers")
		return Unavailable{}, nil
	}

	services := make([]port.AnswerGenerationService, 0, len(configs))
	names := make([]string, 0, len(configs))
	for _, pc := range configs {
		svc, err := NewProvider(pc)
		if err != nil {
			return nil, fmt.Errorf("creating %s generator: %w", pc.Provider, err)
		}
		services = append(services, svc)
		names = append(names, pc.Provider)
	}

	var svc port.AnswerGenerationService = services[0]
	if len(services) > 1 {
		svc = NewFallbackService(services, names, logger)
	}
	if cfg.RequestsPerMinute > 0 {
		svc = NewThrottled(svc, rate.Limit(float64(cfg.RequestsPerMinute)/60), 1)
	}

	logger.Info("generator: providers configured", zap.Strings("providers", names))
	return svc, nil
}
