package classifier

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"intake/internal/domain"
	"intake/internal/profile"
)

// DefaultConfidenceCap is the number of data points at which auto-fill confidence reaches 1.
const DefaultConfidenceCap = 3

// Config tunes classification.
type Config struct {
	ConfidenceCap int
}

// keywordGroup maps question wording to a profile area. Groups are checked in order.
type keywordGroup struct {
	typ domain.InferredType
	re  *regexp.Regexp
}

var keywordGroups = []keywordGroup{
	{domain.InferredSkills, wordPrefix("skill", "technolog", "programming", "framework", "tool", "proficien",
		"expertise", "tech stack", "stack", "software", "coding")},
	{domain.InferredEducation, wordPrefix("education", "degree", "universit", "college", "school", "graduat",
		"stud", "major", "gpa", "academic", "qualification", "bachelor", "master", "phd")},
	{domain.InferredExperience, wordPrefix("experience", "work", "job", "employ", "role", "position",
		"company", "companies", "years", "internship")},
	{domain.InferredCareerGoals, wordPrefix("goal", "objective", "aspiration", "career", "future", "plan",
		"motivat", "ambition", "interest")},
	{domain.InferredCertifications, wordPrefix("certif", "licen", "credential", "accredit")},
	{domain.InferredLanguages, wordPrefix("language", "speak", "fluen", "bilingual", "native", "tongue")},
}

// generatable lists the question types the answer generator may attempt without evidence.
var generatable = map[domain.InferredType]bool{
	domain.InferredSkills:         true,
	domain.InferredEducation:      true,
	domain.InferredExperience:     true,
	domain.InferredCareerGoals:    true,
	domain.InferredCertifications: true,
	domain.InferredLanguages:      true,
	domain.InferredGeneral:        true,
}

// Classifier assigns every accepted question to exactly one bucket.
type Classifier struct {
	cfg      Config
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a Classifier. A non-positive cap falls back to DefaultConfidenceCap.
func New(cfg Config, logger *zap.Logger) *Classifier {
	if cfg.ConfidenceCap <= 0 {
		cfg.ConfidenceCap = DefaultConfidenceCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Classifier{cfg: cfg, validate: v, logger: logger}
}

// Validate splits questions into accepted and rejected, preserving input order.
// Duplicate ids are rejected after their first occurrence.
func (c *Classifier) Validate(questions []domain.Question) ([]domain.Question, []domain.RejectedQuestion) {
	accepted := make([]domain.Question, 0, len(questions))
	rejected := []domain.RejectedQuestion{}
	seen := make(map[string]struct{}, len(questions))

	for _, q := range questions {
		if err := c.check(q, seen); err != nil {
			c.logger.Warn("classifier: question rejected",
				zap.String("question_id", err.QuestionID),
				zap.String("reason", err.Reason),
			)
			rejected = append(rejected, domain.RejectedQuestion{QuestionID: err.QuestionID, Reason: err.Reason})
			continue
		}
		seen[q.ID] = struct{}{}
		accepted = append(accepted, q)
	}
	return accepted, rejected
}

func (c *Classifier) check(q domain.Question, seen map[string]struct{}) *domain.ClassificationError {
	if err := c.validate.Struct(q); err != nil {
		return &domain.ClassificationError{QuestionID: q.ID, Reason: describe(err)}
	}
	if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Text) == "" {
		return &domain.ClassificationError{QuestionID: q.ID, Reason: "id and text must not be blank"}
	}
	if q.Type == domain.QuestionTypeMultipleChoice && len(q.Options) == 0 {
		return &domain.ClassificationError{QuestionID: q.ID, Reason: "options failed required_if=Type multiple_choice"}
	}
	if q.Type != domain.QuestionTypeMultipleChoice && len(q.Options) > 0 {
		return &domain.ClassificationError{QuestionID: q.ID, Reason: "options are only allowed for multiple_choice"}
	}
	if _, dup := seen[q.ID]; dup {
		return &domain.ClassificationError{QuestionID: q.ID, Reason: "duplicate question id"}
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// Classify returns one mapping per question, in input order.
func (c *Classifier) Classify(p *domain.StructuredProfile, questions []domain.Question) []domain.QuestionMapping {
	out := make([]domain.QuestionMapping, 0, len(questions))
	for _, q := range questions {
		m := c.ClassifyOne(p, q)
		c.logger.Debug("classifier: question classified",
			zap.String("question_id", q.ID),
			zap.String("bucket", string(m.Bucket)),
			zap.String("question_type", string(m.QuestionType)),
		)
		out = append(out, m)
	}
	return out
}

// ClassifyOne is a pure function of profile and question.
func (c *Classifier) ClassifyOne(p *domain.StructuredProfile, q domain.Question) domain.QuestionMapping {
	t := InferType(q)
	m := domain.QuestionMapping{QuestionID: q.ID, QuestionType: t}

	n := DataPoints(p, t)
	if n > 0 && c.optionsSatisfied(p, q, t) {
		conf := Confidence(n, c.cfg.ConfidenceCap)
		m.Bucket = domain.BucketAutoFill
		m.Confidence = &conf
		return m
	}
	if generatable[t] {
		m.Bucket = domain.BucketAISuggestion
		return m
	}
	m.Bucket = domain.BucketNoMatch
	return m
}

// optionsSatisfied reports whether a multiple-choice question has an option matching the evidence.
// Other question types are always satisfied.
func (c *Classifier) optionsSatisfied(p *domain.StructuredProfile, q domain.Question, t domain.InferredType) bool {
	if q.Type != domain.QuestionTypeMultipleChoice {
		return true
	}
	_, ok := profile.MatchOption(q.Options, profile.MatchTerms(p, t))
	return ok
}

// InferType tags a question with the profile area it asks about. Upload and link questions
// are tagged by their type; others by keyword groups over the text, then the category.
func InferType(q domain.Question) domain.InferredType {
	switch q.Type {
	case domain.QuestionTypeUpload:
		return domain.InferredFileUpload
	case domain.QuestionTypeLink:
		return domain.InferredLinks
	}
	if t, ok := matchGroups(q.Text); ok {
		return t
	}
	if t, ok := matchGroups(strings.ReplaceAll(q.Category, "_", " ")); ok {
		return t
	}
	return domain.InferredGeneral
}

func matchGroups(s string) (domain.InferredType, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	for _, g := range keywordGroups {
		if g.re.MatchString(s) {
			return g.typ, true
		}
	}
	return "", false
}

// DataPoints counts the profile entries that can answer a question of type t.
func DataPoints(p *domain.StructuredProfile, t domain.InferredType) int {
	return len(profile.Evidence(p, t))
}

// Confidence is min(n/cap, 1).
func Confidence(n, limit int) float64 {
	if limit <= 0 {
		limit = DefaultConfidenceCap
	}
	if n <= 0 {
		return 0
	}
	return min(float64(n)/float64(limit), 1)
}

// IsGeneratable reports whether the generator may answer type t without evidence.
func IsGeneratable(t domain.InferredType) bool {
	return generatable[t]
}

func wordPrefix(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)(?:^|[^\pL\pN])(?:` + strings.Join(quoted, "|") + `)`)
}
