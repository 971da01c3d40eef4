package profile

import (
	"strings"

	"intake/internal/domain"
)

// Merge folds profile fragments left to right into one profile. Singular fields keep
// the first non-empty value; list items are appended unless an item with the same
// distinguishing key is already present. Nil fragments are skipped.
func Merge(fragments []*domain.StructuredProfile) *domain.StructuredProfile {
	out := domain.NewStructuredProfile()
	seen := newSeenSet()

	for _, f := range fragments {
		if f == nil {
			continue
		}

		first(&out.PersonalInfo.Name, f.PersonalInfo.Name)
		first(&out.PersonalInfo.Email, f.PersonalInfo.Email)
		first(&out.PersonalInfo.Phone, f.PersonalInfo.Phone)
		first(&out.PersonalInfo.Location, f.PersonalInfo.Location)
		first(&out.ContactInfo.LinkedIn, f.ContactInfo.LinkedIn)
		first(&out.ContactInfo.GitHub, f.ContactInfo.GitHub)
		first(&out.ContactInfo.Website, f.ContactInfo.Website)
		first(&out.Objective, f.Objective)
		first(&out.Summary, f.Summary)

		out.Education = appendNew(out.Education, f.Education, seen.education, EducationKey)
		out.Experience = appendNew(out.Experience, f.Experience, seen.experience, ExperienceKey)
		out.Skills = appendNew(out.Skills, f.Skills, seen.skills, StringKey)
		out.Certifications = appendNew(out.Certifications, f.Certifications, seen.certifications, CertificationKey)
		out.Languages = appendNew(out.Languages, f.Languages, seen.languages, StringKey)
		out.Projects = appendNew(out.Projects, f.Projects, seen.projects, ProjectKey)
		out.Achievements = appendNew(out.Achievements, f.Achievements, seen.achievements, AchievementKey)
	}

	return out
}

// MergeDocuments merges the structured data of successfully parsed documents in order.
func MergeDocuments(docs []domain.ParsedDocument) *domain.StructuredProfile {
	fragments := make([]*domain.StructuredProfile, 0, len(docs))
	for _, d := range docs {
		if d.Success && d.StructuredData != nil {
			fragments = append(fragments, d.StructuredData)
		}
	}
	return Merge(fragments)
}

// Distinguishing keys used for de-duplication. Keys compare case-insensitively.

func EducationKey(e domain.Education) string {
	return norm(e.Degree) + "|" + norm(e.Field)
}

func ExperienceKey(e domain.Experience) string {
	return norm(e.Title) + "|" + norm(e.Company)
}

func CertificationKey(c domain.Certification) string { return norm(c.Name) }

func ProjectKey(p domain.Project) string { return norm(p.Name) }

func AchievementKey(a domain.Achievement) string { return norm(a.Title) }

func StringKey(s string) string { return norm(s) }

type seenSet struct {
	education, experience, skills, certifications map[string]struct{}
	languages, projects, achievements             map[string]struct{}
}

func newSeenSet() seenSet {
	return seenSet{
		education:      map[string]struct{}{},
		experience:     map[string]struct{}{},
		skills:         map[string]struct{}{},
		certifications: map[string]struct{}{},
		languages:      map[string]struct{}{},
		projects:       map[string]struct{}{},
		achievements:   map[string]struct{}{},
	}
}

func appendNew[T any](dst, src []T, seen map[string]struct{}, key func(T) string) []T {
	for _, item := range src {
		k := key(item)
		if strings.Trim(k, "|") == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dst = append(dst, item)
	}
	return dst
}

func first(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}

func norm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
