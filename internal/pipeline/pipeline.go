package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"intake/internal/classifier"
	"intake/internal/domain"
	"intake/internal/extractor"
	"intake/internal/generator"
	"intake/internal/port"
	"intake/internal/profile"
)

// DefaultSampleLength is the number of runes kept as RawTextSample.
const DefaultSampleLength = 500

// TextExtractor turns one uploaded document into normalized text.
type TextExtractor interface {
	Extract(ctx context.Context, doc domain.RawDocument) (*extractor.Extraction, error)
}

// EntityExtractor builds a profile fragment from normalized text.
type EntityExtractor interface {
	Extract(text string, kind domain.DocumentKind) *domain.StructuredProfile
	InferKind(fileName string) domain.DocumentKind
}

// Config tunes a Pipeline.
type Config struct {
	Workers      int
	SampleLength int
}

// Pipeline runs extraction, merging, classification and answering for one batch.
type Pipeline struct {
	text       TextExtractor
	entities   EntityExtractor
	classifier *classifier.Classifier
	answers    *generator.Service
	store      port.FileStore
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a Pipeline. store may be nil when every document carries its content.
func New(
	cfg Config,
	text TextExtractor,
	entities EntityExtractor,
	cls *classifier.Classifier,
	answers *generator.Service,
	store port.FileStore,
	logger *zap.Logger,
) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.SampleLength <= 0 {
		cfg.SampleLength = DefaultSampleLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		text:       text,
		entities:   entities,
		classifier: cls,
		answers:    answers,
		store:      store,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes one batch. Per-document and per-question failures are recorded on the
// result; the returned error is limited to ErrNoDocuments, ErrNoQuestions,
// ErrAllDocumentsFailed and context cancellation. The result is non-nil in every case.
// Every stored document handle is deleted before Run returns.
func (p *Pipeline) Run(ctx context.Context, docs []domain.RawDocument, questions []domain.Question) (*domain.PrefillResult, error) {
	start := p.now()
	defer p.cleanup(ctx, docs)

	result := &domain.PrefillResult{
		RunID:     uuid.New(),
		Documents: []domain.ParsedDocument{},
		Profile:   domain.NewStructuredProfile(),
		Mappings:  []domain.QuestionMapping{},
		Answers:   []domain.Answer{},
		Rejected:  []domain.RejectedQuestion{},
	}
	finish := func(err error) (*domain.PrefillResult, error) {
		result.Summary = summarize(result, len(questions), p.now().Sub(start))
		if err != nil {
			p.logger.Warn("pipeline: run ended early",
				zap.String("run_id", result.RunID.String()),
				zap.Error(err),
			)
		} else {
			p.logger.Info("pipeline: run complete",
				zap.String("run_id", result.RunID.String()),
				zap.Int("documents_parsed", result.Summary.DocumentsParsed),
				zap.Int("documents_failed", result.Summary.DocumentsFailed),
				zap.Int("auto_fill", result.Summary.AutoFill),
				zap.Int("ai_suggestion", result.Summary.AISuggestion),
				zap.Int("no_match", result.Summary.NoMatch),
				zap.Int("fallback_answers", result.Summary.FallbackAnswers),
				zap.Int64("duration_ms", result.Summary.DurationMS),
			)
		}
		return result, err
	}

	if len(docs) == 0 {
		return finish(domain.ErrNoDocuments)
	}
	if len(questions) == 0 {
		return finish(domain.ErrNoQuestions)
	}

	accepted, rejected := p.classifier.Validate(questions)
	result.Rejected = rejected

	parsed, err := p.parseAll(ctx, docs)
	result.Documents = parsed
	if err != nil {
		return finish(err)
	}

	result.Profile = profile.MergeDocuments(parsed)
	if countParsed(parsed) == 0 {
		return finish(domain.ErrAllDocumentsFailed)
	}

	result.Mappings = p.classifier.Classify(result.Profile, accepted)

	answers, err := p.answerAll(ctx, result.Profile, accepted, result.Mappings)
	result.Answers = answers
	return finish(err)
}

// Profile extracts every document and merges the fragments without answering questions.
// Stored handles are deleted before Profile returns.
func (p *Pipeline) Profile(ctx context.Context, docs []domain.RawDocument) ([]domain.ParsedDocument, *domain.StructuredProfile, error) {
	defer p.cleanup(ctx, docs)

	if len(docs) == 0 {
		return []domain.ParsedDocument{}, domain.NewStructuredProfile(), domain.ErrNoDocuments
	}
	parsed, err := p.parseAll(ctx, docs)
	if err != nil {
		return parsed, domain.NewStructuredProfile(), err
	}
	merged := profile.MergeDocuments(parsed)
	if countParsed(parsed) == 0 {
		return parsed, merged, domain.ErrAllDocumentsFailed
	}
	return parsed, merged, nil
}

func (p *Pipeline) parseAll(ctx context.Context, docs []domain.RawDocument) ([]domain.ParsedDocument, error) {
	parsed := make([]domain.ParsedDocument, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				parsed[i] = failed(doc, err)
				return err
			}
			parsed[i] = p.parseOne(gctx, doc)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return parsed, err
	}
	return parsed, ctx.Err()
}

func (p *Pipeline) parseOne(ctx context.Context, doc domain.RawDocument) domain.ParsedDocument {
	if doc.Err != nil {
		return failed(doc, &domain.ExtractionError{FileName: doc.FileName, MediaType: doc.MediaType, Err: doc.Err})
	}
	if doc.Content == nil && doc.Handle != "" && p.store != nil {
		data, err := p.store.Get(ctx, doc.Handle)
		if err != nil {
			p.logger.Warn("pipeline: loading document failed",
				zap.String("file", doc.FileName),
				zap.Error(err),
			)
			return failed(doc, err)
		}
		doc.Content = data
	}

	ext, err := p.text.Extract(ctx, doc)
	if err != nil {
		p.logger.Warn("pipeline: extraction failed",
			zap.String("file", doc.FileName),
			zap.Error(err),
		)
		return failed(doc, err)
	}

	kind := p.entities.InferKind(doc.FileName)
	p.logger.Debug("pipeline: document extracted",
		zap.String("file", doc.FileName),
		zap.String("document_type", ext.DocumentType),
		zap.String("document_kind", string(kind)),
	)
	return domain.ParsedDocument{
		FileName:       doc.FileName,
		DocumentType:   ext.DocumentType,
		DocumentKind:   kind,
		Success:        true,
		RawTextSample:  extractor.Sample(ext.Text, p.cfg.SampleLength),
		StructuredData: p.entities.Extract(ext.Text, kind),
	}
}

func (p *Pipeline) answerAll(ctx context.Context, sp *domain.StructuredProfile, questions []domain.Question, mappings []domain.QuestionMapping) ([]domain.Answer, error) {
	slots := make([]*domain.Answer, len(questions))

	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for i := range questions {
		g.Go(func() error {
			if a, ok := p.answers.Answer(ctx, sp, questions[i], mappings[i]); ok {
				slots[i] = &a
			}
			return nil
		})
	}
	_ = g.Wait()

	answers := make([]domain.Answer, 0, len(slots))
	for _, a := range slots {
		if a != nil {
			answers = append(answers, *a)
		}
	}
	return answers, ctx.Err()
}

// cleanup deletes every stored handle, even when ctx is already cancelled.
func (p *Pipeline) cleanup(ctx context.Context, docs []domain.RawDocument) {
	if p.store == nil {
		return
	}
	dctx := context.WithoutCancel(ctx)
	for _, doc := range docs {
		if doc.Handle == "" {
			continue
		}
		if err := p.store.Delete(dctx, doc.Handle); err != nil {
			p.logger.Warn("pipeline: deleting stored document failed",
				zap.String("handle", doc.Handle),
				zap.Error(err),
			)
		}
	}
}

func failed(doc domain.RawDocument, err error) domain.ParsedDocument {
	return domain.ParsedDocument{
		FileName:     doc.FileName,
		DocumentType: "unknown",
		Success:      false,
		Error:        err.Error(),
	}
}

func countParsed(docs []domain.ParsedDocument) int {
	n := 0
	for i := range docs {
		if docs[i].Success {
			n++
		}
	}
	return n
}

func summarize(r *domain.PrefillResult, questions int, elapsed time.Duration) domain.Summary {
	s := domain.Summary{
		DocumentsTotal: len(r.Documents),
		QuestionsTotal: questions,
		Rejected:       len(r.Rejected),
		DurationMS:     elapsed.Milliseconds(),
	}
	s.DocumentsParsed = countParsed(r.Documents)
	s.DocumentsFailed = s.DocumentsTotal - s.DocumentsParsed
	for _, m := range r.Mappings {
		switch m.Bucket {
		case domain.BucketAutoFill:
			s.AutoFill++
		case domain.BucketAISuggestion:
			s.AISuggestion++
		case domain.BucketNoMatch:
			s.NoMatch++
		}
	}
	for _, a := range r.Answers {
		if a.Source == domain.SourceFallback {
			s.FallbackAnswers++
		}
	}
	return s
}
