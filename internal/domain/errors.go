package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat    = errors.New("unsupported document format")
	ErrExtractionFailed     = errors.New("text extraction failed")
	ErrEmptyText            = errors.New("document contains no extractable text")
	ErrNoDocuments          = errors.New("no documents supplied")
	ErrNoQuestions          = errors.New("no questions supplied")
	ErrAllDocumentsFailed   = errors.New("every document failed extraction")
	ErrInvalidQuestion      = errors.New("invalid question")
	ErrGeneratorUnavailable = errors.New("answer generator unavailable")
	ErrNotFound             = errors.New("resource not found")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed         = errors.New("file upload to storage failed")
)

// ExtractionError records why a single document could not be turned into text.
type ExtractionError struct {
	FileName  string
	MediaType string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s (%s): %v", e.FileName, e.MediaType, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ClassificationError marks a question rejected before classification.
type ClassificationError struct {
	QuestionID string
	Reason     string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("question %q rejected: %s", e.QuestionID, e.Reason)
}

func (e *ClassificationError) Unwrap() error {
	return ErrInvalidQuestion
}
