package generator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"intake/internal/domain"
	"intake/internal/port"
	"intake/internal/profile"
)

// Fallback reasons recorded in Answer.Metadata["reason"].
const (
	ReasonGeneratorError = "generator_error"
	ReasonEmptyOutput    = "empty_output"
	ReasonNoOptionMatch  = "no_option_match"
)

// DefaultAnswer is used when neither options nor a category default are available.
const DefaultAnswer = "Not specified"

// Config tunes answer generation.
type Config struct {
	AIConfidence       float64
	FallbackConfidence float64
	DefaultAnswer      string
	CategoryDefaults   map[string]string
	CallTimeout        time.Duration
}

// Service produces one confidence-scored answer per classified question. It never
// fails: generation problems degrade to a fallback answer.
type Service struct {
	cfg    Config
	ai     port.AnswerGenerationService
	logger *zap.Logger
}

// NewService creates a Service. A nil ai behaves as an unavailable generator.
func NewService(cfg Config, ai port.AnswerGenerationService, logger *zap.Logger) *Service {
	if cfg.DefaultAnswer == "" {
		cfg.DefaultAnswer = DefaultAnswer
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if ai == nil {
		ai = Unavailable{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, ai: ai, logger: logger}
}

// Answer returns the answer for q, or false when the mapping is no-match.
func (s *Service) Answer(ctx context.Context, p *domain.StructuredProfile, q domain.Question, m domain.QuestionMapping) (domain.Answer, bool) {
	switch m.Bucket {
	case domain.BucketAutoFill:
		if a, ok := s.autoFill(p, q, m); ok {
			return a, true
		}
		s.logger.Debug("generator: auto-fill found no usable value, asking model",
			zap.String("question_id", q.ID),
		)
		return s.suggest(ctx, p, q, m), true
	case domain.BucketAISuggestion:
		return s.suggest(ctx, p, q, m), true
	default:
		return domain.Answer{}, false
	}
}

func (s *Service) autoFill(p *domain.StructuredProfile, q domain.Question, m domain.QuestionMapping) (domain.Answer, bool) {
	evidence := profile.Evidence(p, m.QuestionType)
	if len(evidence) == 0 {
		return domain.Answer{}, false
	}

	var value string
	switch q.Type {
	case domain.QuestionTypeMultipleChoice:
		opt, ok := profile.MatchOption(q.Options, profile.MatchTerms(p, m.QuestionType))
		if !ok {
			return domain.Answer{}, false
		}
		value = opt
	case domain.QuestionTypeYesNo:
		value = "Yes"
	default:
		value = FormatEvidence(m.QuestionType, evidence)
	}
	if value == "" {
		return domain.Answer{}, false
	}

	conf := 0.0
	if m.Confidence != nil {
		conf = *m.Confidence
	}
	return domain.Answer{
		QuestionID: q.ID,
		Value:      value,
		Confidence: conf,
		Source:     domain.SourceDocumentParsing,
		Metadata: map[string]any{
			"question_type": string(m.QuestionType),
			"data_points":   len(evidence),
		},
	}, true
}

// FormatEvidence renders evidence values as a free-text answer. List-like types are
// joined; entry types use the first entry in extraction order.
func FormatEvidence(t domain.InferredType, evidence []string) string {
	if len(evidence) == 0 {
		return ""
	}
	switch t {
	case domain.InferredSkills, domain.InferredLanguages:
		return strings.Join(evidence, ", ")
	case domain.InferredLinks:
		return strings.Join(evidence, "\n")
	default:
		return evidence[0]
	}
}

func (s *Service) suggest(ctx context.Context, p *domain.StructuredProfile, q domain.Question, m domain.QuestionMapping) domain.Answer {
	prompt := BuildAnswerPrompt(q, m.QuestionType, p)

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	raw, err := s.ai.Generate(callCtx, prompt)
	cancel()
	if err != nil {
		s.logger.Warn("generator: generation failed, using fallback",
			zap.String("question_id", q.ID),
			zap.Error(err),
		)
		a := s.fallback(q, m, ReasonGeneratorError)
		a.Metadata["error"] = err.Error()
		return a
	}

	value := ParseOutput(raw)
	if value == "" {
		return s.fallback(q, m, ReasonEmptyOutput)
	}

	if len(q.Options) > 0 {
		opt, ok := profile.MatchText(q.Options, value)
		if !ok {
			s.logger.Debug("generator: model output matched no option",
				zap.String("question_id", q.ID),
				zap.String("output", value),
			)
			return s.fallback(q, m, ReasonNoOptionMatch)
		}
		value = opt
	} else if q.Type == domain.QuestionTypeYesNo {
		value = normalizeYesNo(value)
	}

	return domain.Answer{
		QuestionID: q.ID,
		Value:      value,
		Confidence: s.cfg.AIConfidence,
		Source:     domain.SourceAIGeneration,
		Metadata: map[string]any{
			"question_type": string(m.QuestionType),
		},
	}
}

func (s *Service) fallback(q domain.Question, m domain.QuestionMapping, reason string) domain.Answer {
	return domain.Answer{
		QuestionID: q.ID,
		Value:      s.FallbackValue(q, m.QuestionType),
		Confidence: s.cfg.FallbackConfidence,
		Source:     domain.SourceFallback,
		Metadata: map[string]any{
			"question_type": string(m.QuestionType),
			"reason":        reason,
		},
	}
}

// FallbackValue is the first option, else the category default, else the canonical default.
func (s *Service) FallbackValue(q domain.Question, t domain.InferredType) string {
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) != "" {
			return opt
		}
	}
	if v, ok := s.cfg.CategoryDefaults[q.Category]; ok && q.Category != "" && v != "" {
		return v
	}
	if v, ok := s.cfg.CategoryDefaults[string(t)]; ok && v != "" {
		return v
	}
	return s.cfg.DefaultAnswer
}
