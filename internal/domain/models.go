package domain

import (
	"github.com/google/uuid"
)

// RawDocument is one uploaded file for the duration of a pipeline run.
// Content may be nil, in which case the bytes are loaded through the FileStore by Handle.
// Err is set when the upload was refused before storage; the document is then reported as failed.
type RawDocument struct {
	Handle    string `json:"handle"`
	FileName  string `json:"file_name"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
	Content   []byte `json:"-"`
	Err       error  `json:"-"`
}

// ParsedDocument is the immutable per-document outcome of extraction.
type ParsedDocument struct {
	FileName       string             `json:"file_name"`
	DocumentType   string             `json:"document_type"`
	DocumentKind   DocumentKind       `json:"document_kind"`
	Success        bool               `json:"success"`
	RawTextSample  string             `json:"raw_text_sample,omitempty"`
	StructuredData *StructuredProfile `json:"structured_data,omitempty"`
	Error          string             `json:"error,omitempty"`
}

// PersonalInfo holds identity fields found near the top of a document.
type PersonalInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// ContactInfo holds profile links.
type ContactInfo struct {
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

type Education struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution,omitempty"`
	Year        string `json:"year,omitempty"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Year   string `json:"year,omitempty"`
}

type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StructuredProfile is the set of professional attributes extracted for one applicant.
// List fields behave as sets under the merge de-duplication keys.
type StructuredProfile struct {
	PersonalInfo   PersonalInfo    `json:"personal_info"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Skills         []string        `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Languages      []string        `json:"languages"`
	Projects       []Project       `json:"projects"`
	Achievements   []Achievement   `json:"achievements"`
	ContactInfo    ContactInfo     `json:"contact_info"`
	Objective      string          `json:"objective,omitempty"`
	Summary        string          `json:"summary,omitempty"`
}

// NewStructuredProfile returns a profile with empty, non-nil lists so it encodes as [] rather than null.
func NewStructuredProfile() *StructuredProfile {
	return &StructuredProfile{
		Education:      []Education{},
		Experience:     []Experience{},
		Skills:         []string{},
		Certifications: []Certification{},
		Languages:      []string{},
		Projects:       []Project{},
		Achievements:   []Achievement{},
	}
}

// Question is an admin-defined question the pipeline tries to answer.
type Question struct {
	ID       string       `db:"id" json:"id" yaml:"id" validate:"required"`
	Text     string       `db:"text" json:"text" yaml:"text" validate:"required"`
	Type     QuestionType `db:"type" json:"type" yaml:"type" validate:"required,oneof=text yes_no multiple_choice upload link"`
	Options  []string     `db:"-" json:"options,omitempty" yaml:"options,omitempty" validate:"required_if=Type multiple_choice,dive,required"`
	Category string       `db:"category" json:"category" yaml:"category"`
}

// QuestionMapping is the classification of one question.
type QuestionMapping struct {
	QuestionID   string       `json:"question_id"`
	Bucket       Bucket       `json:"bucket"`
	QuestionType InferredType `json:"question_type"`
	Confidence   *float64     `json:"confidence,omitempty"`
}

// Answer is a confidence-scored response to one classified question.
type Answer struct {
	QuestionID string         `json:"question_id"`
	Value      string         `json:"value"`
	Confidence float64        `json:"confidence"`
	Source     AnswerSource   `json:"source"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RejectedQuestion is an input question that failed validation.
type RejectedQuestion struct {
	QuestionID string `json:"question_id"`
	Reason     string `json:"reason"`
}

// Summary aggregates counts over a pipeline run.
type Summary struct {
	DocumentsTotal  int   `json:"documents_total"`
	DocumentsParsed int   `json:"documents_parsed"`
	DocumentsFailed int   `json:"documents_failed"`
	QuestionsTotal  int   `json:"questions_total"`
	AutoFill        int   `json:"auto_fill"`
	AISuggestion    int   `json:"ai_suggestion"`
	NoMatch         int   `json:"no_match"`
	Rejected        int   `json:"rejected"`
	FallbackAnswers int   `json:"fallback_answers"`
	DurationMS      int64 `json:"duration_ms"`
}

// PrefillResult is the single structured outcome of a pipeline run, partial on failure.
type PrefillResult struct {
	RunID     uuid.UUID          `json:"run_id"`
	Documents []ParsedDocument   `json:"documents"`
	Profile   *StructuredProfile `json:"profile"`
	Mappings  []QuestionMapping  `json:"mappings"`
	Answers   []Answer           `json:"answers"`
	Rejected  []RejectedQuestion `json:"rejected"`
	Summary   Summary            `json:"summary"`
}

// PrefillRecord is what gets handed to the ProfileSink after a run.
type PrefillRecord struct {
	RunID    uuid.UUID
	Profile  *StructuredProfile
	Mappings []QuestionMapping
	Answers  []Answer
	Summary  Summary
}
