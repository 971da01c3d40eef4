package profile

import (
	"fmt"
	"strings"

	"intake/internal/domain"
)

// Evidence lists, in extraction order, the profile values that count as data points
// for a question type. Classifier and generator both read it so they agree on what
// the profile can answer.
func Evidence(p *domain.StructuredProfile, t domain.InferredType) []string {
	if p == nil {
		return nil
	}

	var out []string
	switch t {
	case domain.InferredSkills:
		out = append(out, p.Skills...)
	case domain.InferredLanguages:
		out = append(out, p.Languages...)
	case domain.InferredEducation:
		for _, e := range p.Education {
			out = append(out, FormatEducation(e))
		}
	case domain.InferredExperience:
		for _, e := range p.Experience {
			out = append(out, FormatExperience(e))
		}
	case domain.InferredCertifications:
		for _, c := range p.Certifications {
			out = append(out, FormatCertification(c))
		}
	case domain.InferredCareerGoals:
		out = append(out, p.Objective, p.Summary)
	case domain.InferredLinks:
		out = append(out, p.ContactInfo.LinkedIn, p.ContactInfo.GitHub, p.ContactInfo.Website)
	}

	return compact(out)
}

// MatchTerms returns, per evidence entry, the strings worth comparing against
// multiple-choice options: the formatted entry plus its bare key fields.
func MatchTerms(p *domain.StructuredProfile, t domain.InferredType) [][]string {
	if p == nil {
		return nil
	}

	var out [][]string
	switch t {
	case domain.InferredEducation:
		for _, e := range p.Education {
			out = append(out, compact([]string{FormatEducation(e), e.Degree, e.Field, e.Institution}))
		}
	case domain.InferredExperience:
		for _, e := range p.Experience {
			out = append(out, compact([]string{FormatExperience(e), e.Title, e.Company}))
		}
	case domain.InferredCertifications:
		for _, c := range p.Certifications {
			out = append(out, compact([]string{FormatCertification(c), c.Name, c.Issuer}))
		}
	default:
		for _, v := range Evidence(p, t) {
			out = append(out, []string{v})
		}
	}
	return out
}

// FormatEducation renders "Degree in Field, Institution (Year)".
func FormatEducation(e domain.Education) string {
	s := e.Degree
	if e.Field != "" {
		s = joinNonEmpty(" in ", s, e.Field)
	}
	if e.Institution != "" {
		s = joinNonEmpty(", ", s, e.Institution)
	}
	if e.Year != "" {
		s = fmt.Sprintf("%s (%s)", s, e.Year)
	}
	return strings.TrimSpace(s)
}

// FormatExperience renders "Title at Company (Duration)".
func FormatExperience(e domain.Experience) string {
	s := joinNonEmpty(" at ", e.Title, e.Company)
	if e.Duration != "" {
		s = fmt.Sprintf("%s (%s)", s, e.Duration)
	}
	return strings.TrimSpace(s)
}

// FormatCertification renders "Name (Issuer, Year)".
func FormatCertification(c domain.Certification) string {
	detail := joinNonEmpty(", ", c.Issuer, c.Year)
	if detail == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, detail)
}

// Summarize renders a compact multi-line description of a profile for prompts.
func Summarize(p *domain.StructuredProfile) string {
	if p == nil {
		return "No profile data available."
	}

	var lines []string
	add := func(label string, values []string) {
		if values = compact(values); len(values) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", label, strings.Join(values, "; ")))
		}
	}

	add("Name", []string{p.PersonalInfo.Name})
	add("Location", []string{p.PersonalInfo.Location})
	add("Summary", []string{p.Summary})
	add("Objective", []string{p.Objective})
	add("Skills", p.Skills)
	add("Languages", p.Languages)
	add("Education", Evidence(p, domain.InferredEducation))
	add("Experience", Evidence(p, domain.InferredExperience))
	add("Certifications", Evidence(p, domain.InferredCertifications))
	projects := make([]string, 0, len(p.Projects))
	for _, pr := range p.Projects {
		projects = append(projects, pr.Name)
	}
	add("Projects", projects)
	achievements := make([]string, 0, len(p.Achievements))
	for _, a := range p.Achievements {
		achievements = append(achievements, a.Title)
	}
	add("Achievements", achievements)

	if len(lines) == 0 {
		return "No profile data available."
	}
	return strings.Join(lines, "\n")
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(compact(parts), sep)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
