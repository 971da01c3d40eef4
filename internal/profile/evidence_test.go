package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"intake/internal/domain"
	"intake/internal/profile"
)

func TestEvidence(t *testing.T) {
	p := domain.NewStructuredProfile()
	p.Skills = []string{"Go", "SQL"}
	p.Education = []domain.Education{{Degree: "Bachelor of Science", Field: "Physics", Institution: "MIT", Year: "2015"}}
	p.Experience = []domain.Experience{{Title: "Engineer", Company: "Acme", Duration: "2019 - 2021"}}
	p.Certifications = []domain.Certification{{Name: "CKA", Issuer: "CNCF"}}
	p.Summary = "Backend engineer"
	p.ContactInfo.GitHub = "github.com/jane"

	tests := []struct {
		name string
		typ  domain.InferredType
		want []string
	}{
		{"skills", domain.InferredSkills, []string{"Go", "SQL"}},
		{"education", domain.InferredEducation, []string{"Bachelor of Science in Physics, MIT (2015)"}},
		{"experience", domain.InferredExperience, []string{"Engineer at Acme (2019 - 2021)"}},
		{"certifications", domain.InferredCertifications, []string{"CKA (CNCF)"}},
		{"career goals skip empty objective", domain.InferredCareerGoals, []string{"Backend engineer"}},
		{"links", domain.InferredLinks, []string{"github.com/jane"}},
		{"languages empty", domain.InferredLanguages, []string{}},
		{"general has none", domain.InferredGeneral, []string{}},
		{"file upload has none", domain.InferredFileUpload, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, profile.Evidence(p, tt.typ))
		})
	}
}

func TestEvidence_NilProfile(t *testing.T) {
	assert.Empty(t, profile.Evidence(nil, domain.InferredSkills))
}

func TestMatchTerms_IncludesKeyFields(t *testing.T) {
	p := domain.NewStructuredProfile()
	p.Education = []domain.Education{{Degree: "Master of Science", Field: "Data Science"}}

	terms := profile.MatchTerms(p, domain.InferredEducation)

	assert.Equal(t, [][]string{{"Master of Science in Data Science", "Master of Science", "Data Science"}}, terms)
}

func TestFormatCertification_NameOnly(t *testing.T) {
	assert.Equal(t, "CKA", profile.FormatCertification(domain.Certification{Name: "CKA"}))
	assert.Equal(t, "CKA (2022)", profile.FormatCertification(domain.Certification{Name: "CKA", Year: "2022"}))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "No profile data available.", profile.Summarize(domain.NewStructuredProfile()))

	p := domain.NewStructuredProfile()
	p.PersonalInfo.Name = "Jane Doe"
	p.Skills = []string{"Go", "SQL"}

	assert.Equal(t, "Name: Jane Doe\nSkills: Go; SQL", profile.Summarize(p))
}
