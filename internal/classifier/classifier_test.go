package classifier_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"intake/internal/classifier"
	"intake/internal/domain"
)

func newClassifier() *classifier.Classifier {
	return classifier.New(classifier.Config{ConfidenceCap: 3}, zap.NewNop())
}

func TestClassify_MultipleChoiceSkillsAutoFill(t *testing.T) {
	p := domain.NewStructuredProfile()
	p.Skills = []string{"JavaScript", "Python"}
	q := domain.Question{
		ID:       "q1",
		Text:     "Which of these do you use?",
		Type:     domain.QuestionTypeMultipleChoice,
		Options:  []string{"JavaScript", "Python", "Java"},
		Category: "skills",
	}

	m := newClassifier().ClassifyOne(p, q)

	assert.Equal(t, domain.BucketAutoFill, m.Bucket)
	assert.Equal(t, domain.InferredSkills, m.QuestionType)
	require.NotNil(t, m.Confidence)
	assert.InDelta(t, 0.667, *m.Confidence, 0.001)
}

func TestClassify_NoCertificationsGoesToAISuggestion(t *testing.T) {
	q := domain.Question{ID: "q2", Text: "Do you have any certifications?", Type: domain.QuestionTypeYesNo}

	m := newClassifier().ClassifyOne(domain.NewStructuredProfile(), q)

	assert.Equal(t, domain.BucketAISuggestion, m.Bucket)
	assert.Equal(t, domain.InferredCertifications, m.QuestionType)
	assert.Nil(t, m.Confidence)
}

func TestClassify_UploadIsNoMatch(t *testing.T) {
	p := domain.NewStructuredProfile()
	p.Skills = []string{"Go"}
	q := domain.Question{ID: "q3", Text: "Upload your skills certificate", Type: domain.QuestionTypeUpload}

	m := newClassifier().ClassifyOne(p, q)

	assert.Equal(t, domain.BucketNoMatch, m.Bucket)
	assert.Equal(t, domain.InferredFileUpload, m.QuestionType)
}

func TestClassify_LinkUsesContactInfo(t *testing.T) {
	q := domain.Question{ID: "q4", Text: "Portfolio", Type: domain.QuestionTypeLink}
	c := newClassifier()

	empty := c.ClassifyOne(domain.NewStructuredProfile(), q)
	p := domain.NewStructuredProfile()
	p.ContactInfo.GitHub = "github.com/jane"
	filled := c.ClassifyOne(p, q)

	assert.Equal(t, domain.BucketNoMatch, empty.Bucket)
	assert.Equal(t, domain.BucketAutoFill, filled.Bucket)
}

func TestClassify_MultipleChoiceWithoutMatchingOptionIsDemoted(t *testing.T) {
	p := domain.NewStructuredProfile()
	p.Skills = []string{"Rust"}
	q := domain.Question{
		ID:      "q5",
		Text:    "Primary programming language?",
		Type:    domain.QuestionTypeMultipleChoice,
		Options: []string{"Java", "Python"},
	}

	m := newClassifier().ClassifyOne(p, q)

	assert.Equal(t, domain.BucketAISuggestion, m.Bucket)
	assert.Nil(t, m.Confidence)
}

func TestClassify_ConfidenceMonotonicAndClamped(t *testing.T) {
	c := newClassifier()
	q := domain.Question{ID: "s", Text: "List your skills", Type: domain.QuestionTypeText}
	skills := []string{"Go", "Rust", "SQL", "Docker", "Kafka"}

	prev := 0.0
	for n := 1; n <= len(skills); n++ {
		p := domain.NewStructuredProfile()
		p.Skills = skills[:n]
		m := c.ClassifyOne(p, q)
		require.NotNil(t, m.Confidence)
		assert.GreaterOrEqual(t, *m.Confidence, prev)
		if n >= 3 {
			assert.Equal(t, 1.0, *m.Confidence)
		}
		prev = *m.Confidence
	}
}

func TestClassify_TotalOverQuestions(t *testing.T) {
	c := newClassifier()
	p := domain.NewStructuredProfile()
	p.Experience = []domain.Experience{{Title: "Engineer", Company: "Acme"}}

	for _, n := range []int{0, 1, 7, 25} {
		questions := make([]domain.Question, n)
		for i := range questions {
			switch i % 3 {
			case 0:
				questions[i] = domain.Question{ID: fmt.Sprintf("q%d", i), Text: "Describe your work experience", Type: domain.QuestionTypeText}
			case 1:
				questions[i] = domain.Question{ID: fmt.Sprintf("q%d", i), Text: "Anything else?", Type: domain.QuestionTypeText}
			default:
				questions[i] = domain.Question{ID: fmt.Sprintf("q%d", i), Text: "Attach a photo", Type: domain.QuestionTypeUpload}
			}
		}

		mappings := c.Classify(p, questions)

		require.Len(t, mappings, n)
		seen := map[string]bool{}
		for i, m := range mappings {
			assert.Equal(t, questions[i].ID, m.QuestionID)
			assert.False(t, seen[m.QuestionID])
			seen[m.QuestionID] = true
			assert.Contains(t, []domain.Bucket{domain.BucketAutoFill, domain.BucketAISuggestion, domain.BucketNoMatch}, m.Bucket)
		}
	}
}

func TestInferType(t *testing.T) {
	tests := []struct {
		text     string
		category string
		want     domain.InferredType
	}{
		{"What programming languages do you know?", "", domain.InferredSkills},
		{"What is your highest degree?", "", domain.InferredEducation},
		{"How many years have you worked in sales?", "", domain.InferredExperience},
		{"Where do you see your career in five years?", "", domain.InferredExperience},
		{"What are your long-term goals?", "", domain.InferredCareerGoals},
		{"Do you hold a driving licence?", "", domain.InferredCertifications},
		{"Which languages do you speak?", "", domain.InferredLanguages},
		{"Anything else we should know?", "", domain.InferredGeneral},
		{"Pick one", "career_goals", domain.InferredCareerGoals},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			q := domain.Question{ID: "x", Text: tt.text, Type: domain.QuestionTypeText, Category: tt.category}
			assert.Equal(t, tt.want, classifier.InferType(q))
		})
	}
}

func TestValidate(t *testing.T) {
	c := newClassifier()
	questions := []domain.Question{
		{ID: "ok", Text: "Skills?", Type: domain.QuestionTypeText},
		{ID: "mc", Text: "Pick", Type: domain.QuestionTypeMultipleChoice},
		{ID: "mc-empty", Text: "Pick", Type: domain.QuestionTypeMultipleChoice, Options: []string{}},
		{ID: "bad-type", Text: "Hmm", Type: "essay"},
		{ID: "", Text: "No id", Type: domain.QuestionTypeText},
		{ID: "blank", Text: "   ", Type: domain.QuestionTypeText},
		{ID: "ok", Text: "Duplicate", Type: domain.QuestionTypeText},
		{ID: "yn-options", Text: "Relocate?", Type: domain.QuestionTypeYesNo, Options: []string{"Yes", "No"}},
		{ID: "mc-ok", Text: "Pick", Type: domain.QuestionTypeMultipleChoice, Options: []string{"A", "B"}},
	}

	accepted, rejected := c.Validate(questions)

	require.Len(t, accepted, 2)
	assert.Equal(t, "ok", accepted[0].ID)
	assert.Equal(t, "mc-ok", accepted[1].ID)

	ids := make([]string, 0, len(rejected))
	for _, r := range rejected {
		ids = append(ids, r.QuestionID)
		assert.NotEmpty(t, r.Reason)
	}
	assert.Equal(t, []string{"mc", "mc-empty", "bad-type", "", "blank", "ok", "yn-options"}, ids)
	assert.Contains(t, rejected[0].Reason, "options")
	assert.Contains(t, rejected[2].Reason, "type")
	assert.Equal(t, "duplicate question id", rejected[5].Reason)
	assert.Equal(t, "options are only allowed for multiple_choice", rejected[6].Reason)
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0.0, classifier.Confidence(0, 3))
	assert.InDelta(t, 1.0/3, classifier.Confidence(1, 3), 1e-9)
	assert.Equal(t, 1.0, classifier.Confidence(4, 3))
	assert.Equal(t, 1.0, classifier.Confidence(3, 0))
}

func TestClassificationError_UnwrapsToInvalidQuestion(t *testing.T) {
	var err error = &domain.ClassificationError{QuestionID: "q", Reason: "bad"}

	assert.ErrorIs(t, err, domain.ErrInvalidQuestion)
}
