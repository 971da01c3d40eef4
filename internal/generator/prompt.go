package generator

import (
	"fmt"
	"strings"

	"intake/internal/domain"
	"intake/internal/profile"
)

// BuildAnswerPrompt returns the prompt asking a model to suggest an answer for one question.
func BuildAnswerPrompt(q domain.Question, t domain.InferredType, p *domain.StructuredProfile) string {
	var b strings.Builder

	b.WriteString("You are helping an applicant fill in an application form using the profile extracted from their documents.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(q.Text))
	fmt.Fprintf(&b, "Answer format: %s\n", q.Type)
	if q.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", q.Category)
	}
	fmt.Fprintf(&b, "Topic: %s\n", t)

	b.WriteString("\nApplicant profile:\n")
	b.WriteString(profile.Summarize(p))
	b.WriteString("\n")

	if len(q.Options) > 0 {
		b.WriteString("\nOptions:\n")
		for i, opt := range q.Options {
			fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
		}
	}

	b.WriteString("\nINSTRUCTIONS:\n")
	b.WriteString("- Reply with a single line containing only the answer. No explanation, no markdown.\n")
	switch {
	case len(q.Options) > 0:
		b.WriteString("- Reply with exactly one of the options, written exactly as listed.\n")
	case q.Type == domain.QuestionTypeYesNo:
		b.WriteString("- Reply with Yes or No.\n")
	default:
		b.WriteString("- Keep the answer short and grounded in the profile. If the profile gives no basis, give a brief, neutral suggestion.\n")
	}

	return b.String()
}
