package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"intake/internal/domain"
	"intake/internal/extractor"
	"intake/internal/port"
)

// UploadedFile is one file received for a prefill run.
type UploadedFile struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// PrefillInput is the DTO for prefill requests. Questions overrides the active question set when non-empty.
type PrefillInput struct {
	Files     []UploadedFile
	Questions []domain.Question
}

// PipelineRunner runs the document-to-answers pipeline for one batch.
type PipelineRunner interface {
	Run(ctx context.Context, docs []domain.RawDocument, questions []domain.Question) (*domain.PrefillResult, error)
}

// PrefillService defines the prefill contract.
type PrefillService interface {
	Prefill(ctx context.Context, input PrefillInput) (*domain.PrefillResult, error)
	ListQuestions(ctx context.Context) ([]domain.Question, error)
}

// PrefillConfig holds upload limits.
type PrefillConfig struct {
	MaxFileSizeMB int64
}

type prefillService struct {
	store     port.FileStore
	questions port.QuestionSource
	sink      port.ProfileSink
	pipeline  PipelineRunner
	cfg       PrefillConfig
	logger    *zap.Logger
}

// NewPrefillService creates a PrefillService. sink may be nil.
func NewPrefillService(
	store port.FileStore,
	questions port.QuestionSource,
	sink port.ProfileSink,
	pipeline PipelineRunner,
	cfg PrefillConfig,
	logger *zap.Logger,
) PrefillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &prefillService{
		store:     store,
		questions: questions,
		sink:      sink,
		pipeline:  pipeline,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *prefillService) Prefill(ctx context.Context, input PrefillInput) (*domain.PrefillResult, error) {
	docs := make([]domain.RawDocument, 0, len(input.Files))
	for _, f := range input.Files {
		doc, err := s.stage(ctx, f)
		if err != nil {
			s.discard(ctx, docs)
			return nil, err
		}
		docs = append(docs, doc)
	}

	questions := input.Questions
	if len(questions) == 0 {
		active, err := s.questions.ListActive(ctx)
		if err != nil {
			s.discard(ctx, docs)
			return nil, fmt.Errorf("loading questions: %w", err)
		}
		questions = active
	}

	s.logger.Info("prefillService.Prefill: starting run",
		zap.Int("documents", len(docs)),
		zap.Int("questions", len(questions)),
	)

	result, err := s.pipeline.Run(ctx, docs, questions)
	if err != nil {
		return result, err
	}

	if s.sink != nil {
		rec := domain.PrefillRecord{
			RunID:    result.RunID,
			Profile:  result.Profile,
			Mappings: result.Mappings,
			Answers:  result.Answers,
			Summary:  result.Summary,
		}
		if err := s.sink.Record(ctx, rec); err != nil {
			s.logger.Error("prefillService.Prefill: recording run failed",
				zap.String("run_id", result.RunID.String()),
				zap.Error(err),
			)
		}
	}
	return result, nil
}

func (s *prefillService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.questions.ListActive(ctx)
}

// stage writes one upload to the file store. Oversized files are not stored; they travel on as
// documents carrying their rejection so the batch continues. Only storage failures are returned.
func (s *prefillService) stage(ctx context.Context, f UploadedFile) (domain.RawDocument, error) {
	doc := domain.RawDocument{
		FileName:  f.Name,
		MediaType: extractor.ResolveMediaType(f.ContentType, f.Name),
		Size:      f.Size,
	}

	if maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024; maxBytes > 0 && f.Size > maxBytes {
		s.logger.Warn("prefillService.Prefill: upload over size limit",
			zap.String("file", f.Name),
			zap.Int64("size", f.Size),
		)
		doc.Err = domain.ErrFileTooLarge
		return doc, nil
	}

	// Read first 512 bytes for magic-byte content detection
	head := make([]byte, 512)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return domain.RawDocument{}, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	head = head[:n]

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	if ft, ok := domain.AllowedExtensions[ext]; !ok {
		s.logger.Debug("prefillService.Prefill: unlisted extension", zap.String("file", f.Name))
	} else if !Sniff(ft, head) {
		s.logger.Warn("prefillService.Prefill: content does not match extension",
			zap.String("file", f.Name),
			zap.String("file_type", string(ft)),
		)
	}

	handle, err := s.store.Put(ctx, f.Name, doc.MediaType, io.MultiReader(bytes.NewReader(head), f.Body))
	if err != nil {
		s.logger.Error("prefillService.Prefill: storing upload failed",
			zap.String("file", f.Name),
			zap.Error(err),
		)
		return domain.RawDocument{}, fmt.Errorf("%s: %w", f.Name, domain.ErrUploadFailed)
	}
	doc.Handle = handle
	return doc, nil
}

// discard deletes already-stored uploads after a failed request.
func (s *prefillService) discard(ctx context.Context, docs []domain.RawDocument) {
	dctx := context.WithoutCancel(ctx)
	for _, d := range docs {
		if d.Handle == "" {
			continue
		}
		if err := s.store.Delete(dctx, d.Handle); err != nil {
			s.logger.Warn("prefillService.Prefill: deleting upload failed",
				zap.String("handle", d.Handle),
				zap.Error(err),
			)
		}
	}
}

// Sniff reports whether the leading bytes of a file are consistent with its declared type.
func Sniff(ft domain.FileType, head []byte) bool {
	switch ft {
	case domain.FileTypePDF:
		return bytes.HasPrefix(head, []byte("%PDF"))
	case domain.FileTypeDOCX, domain.FileTypeODT, domain.FileTypeXLSX:
		return bytes.HasPrefix(head, []byte("PK\x03\x04"))
	case domain.FileTypeDOC:
		return bytes.HasPrefix(head, []byte("\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1"))
	case domain.FileTypeRTF:
		return bytes.HasPrefix(head, []byte(`{\rtf`))
	case domain.FileTypeTIFF:
		return bytes.HasPrefix(head, []byte("II*\x00")) || bytes.HasPrefix(head, []byte("MM\x00*"))
	case domain.FileTypeJPG, domain.FileTypePNG, domain.FileTypeGIF, domain.FileTypeBMP, domain.FileTypeWEBP:
		return http.DetectContentType(head) == domain.AllowedFileTypes[ft]
	case domain.FileTypeTXT:
		return extractor.LooksTextual(head)
	default:
		return false
	}
}
