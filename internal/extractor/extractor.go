package extractor

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"intake/internal/config"
	"intake/internal/domain"
	"intake/internal/port"
)

// Document type names reported on ParsedDocument.
const (
	TypePDF   = "pdf"
	TypeDOCX  = "docx"
	TypeODT   = "odt"
	TypeDOC   = "doc"
	TypeRTF   = "rtf"
	TypeText  = "text"
	TypeXLSX  = "xlsx"
	TypeImage = "image"
)

// Extraction is the normalized text of one document.
type Extraction struct {
	DocumentType string
	MediaType    string
	Text         string
}

type registration struct {
	docType string
	backend port.TextExtractionBackend
}

// Extractor dispatches documents to format backends by media type.
type Extractor struct {
	backends map[string]registration
	text     port.TextExtractionBackend
	logger   *zap.Logger
}

// New creates an Extractor with only the plain-text fallback registered.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		backends: make(map[string]registration),
		text:     TextBackend{},
		logger:   logger,
	}
}

// NewDefault creates an Extractor with every built-in backend registered.
func NewDefault(cfg config.ExtractorConfig, runner Runner, logger *zap.Logger) *Extractor {
	e := New(logger)
	e.Register(TypePDF, PDFBackend{}, domain.MediaTypePDF)
	e.Register(TypeDOCX, DOCXBackend{}, domain.MediaTypeDOCX)
	e.Register(TypeODT, ODTBackend{}, domain.MediaTypeODT)
	e.Register(TypeDOC, DOCBackend{}, domain.MediaTypeDOC)
	e.Register(TypeRTF, RTFBackend{}, domain.MediaTypeRTF, "text/rtf")
	e.Register(TypeText, TextBackend{}, domain.MediaTypeText, "text/markdown", "text/csv")
	e.Register(TypeXLSX, XLSXBackend{}, domain.MediaTypeXLSX)
	e.Register(TypeImage, NewOCRBackend(cfg, runner, logger),
		domain.MediaTypeJPEG, domain.MediaTypePNG, domain.MediaTypeGIF,
		domain.MediaTypeBMP, domain.MediaTypeTIFF, domain.MediaTypeWEBP,
	)
	return e
}

// Register binds a backend to one or more media types.
func (e *Extractor) Register(docType string, backend port.TextExtractionBackend, mediaTypes ...string) {
	for _, mt := range mediaTypes {
		e.backends[mt] = registration{docType: docType, backend: backend}
	}
}

// Extract turns a document into normalized text. Unknown media types and failing backends
// fall back to plain-text decoding when the bytes look textual.
func (e *Extractor) Extract(ctx context.Context, doc domain.RawDocument) (*Extraction, error) {
	mediaType := ResolveMediaType(doc.MediaType, doc.FileName)
	fail := func(err error) error {
		return &domain.ExtractionError{FileName: doc.FileName, MediaType: mediaType, Err: err}
	}

	reg, ok := e.backends[mediaType]
	if !ok && strings.HasPrefix(mediaType, "text/") {
		reg, ok = registration{docType: TypeText, backend: e.text}, true
	}

	var raw string
	docType := reg.docType
	if ok {
		text, err := reg.backend.Extract(ctx, doc.Content, mediaType)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fail(ctx.Err())
			}
			if !LooksTextual(doc.Content) {
				return nil, fail(fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err))
			}
			e.logger.Warn("extractor: backend failed, decoding as plain text",
				zap.String("file", doc.FileName),
				zap.String("document_type", docType),
				zap.Error(err),
			)
			text, _ = e.text.Extract(ctx, doc.Content, domain.MediaTypeText)
			docType = TypeText
		}
		raw = text
	} else {
		if !LooksTextual(doc.Content) {
			return nil, fail(domain.ErrUnsupportedFormat)
		}
		raw, _ = e.text.Extract(ctx, doc.Content, domain.MediaTypeText)
		docType = TypeText
	}

	text := Normalize(raw)
	if text == "" {
		return nil, fail(domain.ErrEmptyText)
	}

	return &Extraction{DocumentType: docType, MediaType: mediaType, Text: text}, nil
}

// ResolveMediaType strips parameters from the declared type and falls back to the
// file extension when the declared type is missing or generic.
func ResolveMediaType(declared, fileName string) string {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	if mt != "" && mt != domain.MediaTypeOctet {
		return mt
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ft, ok := domain.AllowedExtensions[ext]; ok {
		return domain.AllowedFileTypes[ft]
	}
	if mt == "" {
		return domain.MediaTypeOctet
	}
	return mt
}

// LooksTextual reports whether data is plausibly human-readable text.
func LooksTextual(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	if hasUTF16BOM(sample) {
		return true
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	control := 0
	for _, b := range sample {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' && b != '\f' {
			control++
		}
	}
	if control*20 > len(sample) {
		return false
	}
	// Windows-1252 text is accepted even when not valid UTF-8.
	return utf8.Valid(sample) || control == 0
}

// Sample returns the first n runes of text.
func Sample(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
