package entity

import (
	"path/filepath"
	"strings"

	"intake/internal/domain"
)

// Extractor derives a StructuredProfile fragment from normalized document text.
// It holds no per-document state and is safe for concurrent use.
type Extractor struct {
	rules *Rules
}

// New creates an Extractor over a compiled rule table.
func New(rules *Rules) *Extractor {
	return &Extractor{rules: rules}
}

// NewDefault creates an Extractor over the embedded rule table.
func NewDefault() (*Extractor, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	return New(rules), nil
}

// Rules returns the rule table in use.
func (x *Extractor) Rules() *Rules {
	return x.rules
}

// Extract builds a profile fragment. Fields without a recognizable section stay empty.
func (x *Extractor) Extract(text string, kind domain.DocumentKind) *domain.StructuredProfile {
	r := x.rules
	p := domain.NewStructuredProfile()
	if strings.TrimSpace(text) == "" {
		return p
	}
	lines := strings.Split(text, "\n")

	p.PersonalInfo = r.personalInfo(lines, text)
	p.ContactInfo = r.contactInfo(text)

	span := func(section string) (Span, bool) {
		if s, ok := r.FindSection(lines, section); ok {
			return s, true
		}
		if k, ok := r.Kinds[string(kind)]; ok && k.Section == section {
			return WholeText(lines), true
		}
		return Span{}, false
	}

	if s, ok := span(SectionEducation); ok {
		p.Education = r.education(s)
	}
	if s, ok := span(SectionExperience); ok {
		p.Experience = r.experience(s)
	}
	if s, ok := span(SectionSkills); ok {
		p.Skills = vocabulary(s.Text, r.skillTerms, r.Sections[SectionSkills].MaxEntries)
	}
	if s, ok := span(SectionCertifications); ok {
		p.Certifications = r.certifications(s)
	}
	if s, ok := span(SectionLanguages); ok {
		p.Languages = vocabulary(s.Text, r.languageTerms, r.Sections[SectionLanguages].MaxEntries)
	}
	if s, ok := span(SectionProjects); ok {
		p.Projects = r.projects(s)
	}
	if s, ok := span(SectionAchievements); ok {
		p.Achievements = r.achievements(s)
	}
	if s, ok := span(SectionObjective); ok {
		p.Objective = paragraph(s.Text)
	}
	if s, ok := span(SectionSummary); ok {
		p.Summary = paragraph(s.Text)
	}

	return p
}

// InferKind guesses the document kind from its file name using the extractor's rules.
func (x *Extractor) InferKind(fileName string) domain.DocumentKind {
	return x.rules.InferKind(fileName)
}

// InferKind guesses the document kind from its file name; resume is the default.
func (r *Rules) InferKind(fileName string) domain.DocumentKind {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)))
	for _, kind := range r.kindNames {
		for _, hint := range r.Kinds[kind].FileNames {
			if strings.Contains(base, hint) {
				return domain.DocumentKind(kind)
			}
		}
	}
	return domain.KindResume
}

const maxParagraphRunes = 500

// paragraph joins a span into a single line, bounded in length.
func paragraph(text string) string {
	out := strings.Join(strings.Fields(text), " ")
	if r := []rune(out); len(r) > maxParagraphRunes {
		out = strings.TrimSpace(string(r[:maxParagraphRunes]))
	}
	return out
}
