package port

import (
	"context"

	"intake/internal/domain"
)

// QuestionSource lists the questions an applicant currently has to answer.
type QuestionSource interface {
	ListActive(ctx context.Context) ([]domain.Question, error)
}

// ProfileSink records the outcome of a prefill run.
type ProfileSink interface {
	Record(ctx context.Context, rec domain.PrefillRecord) error
}
