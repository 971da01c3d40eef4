package port

import "context"

// AnswerGenerationService abstracts a language-model text completion call.
type AnswerGenerationService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
