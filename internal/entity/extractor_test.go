package entity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/domain"
	"intake/internal/entity"
)

const resumeText = `Jane Doe
San Francisco, CA | jane.doe@example.com | (555) 123-4567
linkedin.com/in/janedoe | github.com/janedoe | https://janedoe.dev

Summary
Backend engineer with 6 years of experience building distributed systems.

Experience
Senior Software Engineer at Acme Corp
Jan 2020 - Present
- Built payment APIs in Go
Software Engineer, Globex
2017 - 2019
- Maintained billing services

Education
Bachelor of Science in Computer Science, Stanford University, 2017

Skills
Golang, Python, Docker, Kubernetes, PostgreSQL, agile

Certifications
AWS Certified Solutions Architect (Amazon, 2021)

Languages
English, Spanish

Projects
Ledger: Double-entry accounting library

Awards
Hackathon Winner - First place at Acme Hack 2019`

func newExtractor(t *testing.T) *entity.Extractor {
	t.Helper()
	x, err := entity.NewDefault()
	require.NoError(t, err)
	return x
}

func TestExtract_Resume(t *testing.T) {
	p := newExtractor(t).Extract(resumeText, domain.KindResume)

	assert.Equal(t, domain.PersonalInfo{
		Name:     "Jane Doe",
		Email:    "jane.doe@example.com",
		Phone:    "(555) 123-4567",
		Location: "San Francisco, CA",
	}, p.PersonalInfo)

	assert.Equal(t, domain.ContactInfo{
		LinkedIn: "linkedin.com/in/janedoe",
		GitHub:   "github.com/janedoe",
		Website:  "https://janedoe.dev",
	}, p.ContactInfo)

	assert.Equal(t, "Backend engineer with 6 years of experience building distributed systems.", p.Summary)
	assert.Empty(t, p.Objective)

	require.Len(t, p.Experience, 2)
	assert.Equal(t, domain.Experience{
		Title:       "Senior Software Engineer",
		Company:     "Acme Corp",
		Duration:    "Jan 2020 - Present",
		Description: "Built payment APIs in Go",
	}, p.Experience[0])
	assert.Equal(t, "Software Engineer", p.Experience[1].Title)
	assert.Equal(t, "Globex", p.Experience[1].Company)
	assert.Equal(t, "2017 - 2019", p.Experience[1].Duration)

	assert.Equal(t, []domain.Education{{
		Degree:      "Bachelor of Science",
		Field:       "Computer Science",
		Institution: "Stanford University",
		Year:        "2017",
	}}, p.Education)

	assert.Equal(t, []string{"Go", "Python", "Docker", "Kubernetes", "PostgreSQL", "Agile"}, p.Skills)

	assert.Equal(t, []domain.Certification{{
		Name:   "AWS Certified Solutions Architect",
		Issuer: "Amazon",
		Year:   "2021",
	}}, p.Certifications)

	assert.Equal(t, []string{"English", "Spanish"}, p.Languages)
	assert.Equal(t, []domain.Project{{Name: "Ledger", Description: "Double-entry accounting library"}}, p.Projects)
	assert.Equal(t, []domain.Achievement{{Title: "Hackathon Winner", Description: "First place at Acme Hack 2019"}}, p.Achievements)
}

func TestExtract_EmptyText(t *testing.T) {
	p := newExtractor(t).Extract("   ", domain.KindResume)

	assert.Equal(t, domain.NewStructuredProfile(), p)
}

func TestExtract_NoSectionsYieldsEmptyLists(t *testing.T) {
	p := newExtractor(t).Extract("Just some notes\nnothing structured here", domain.KindResume)

	assert.Empty(t, p.Education)
	assert.Empty(t, p.Experience)
	assert.Empty(t, p.Skills)
	assert.Empty(t, p.Certifications)
	assert.NotNil(t, p.Skills)
}

func TestExtract_InlineHeader(t *testing.T) {
	text := "Skills: Go, Rust, React\nObjective: Lead a platform team building developer tooling."
	p := newExtractor(t).Extract(text, domain.KindResume)

	assert.Equal(t, []string{"Go", "Rust", "React"}, p.Skills)
	assert.Equal(t, "Lead a platform team building developer tooling.", p.Objective)
}

func TestExtract_ProgrammingLanguagesStayInSkills(t *testing.T) {
	text := "Technical Skills\nDocker, Terraform\nProgramming Languages: Python, Java\n\nLanguages\nFrench"
	p := newExtractor(t).Extract(text, domain.KindResume)

	assert.Equal(t, []string{"Docker", "Terraform", "Python", "Java"}, p.Skills)
	assert.Equal(t, []string{"French"}, p.Languages)
}

func TestExtract_SkillCap(t *testing.T) {
	text := "Skills\nGo, Python, Java, JavaScript, TypeScript, C++, C#, Ruby, PHP, Rust, Kotlin, Swift, Scala, SQL, " +
		"HTML, CSS, React, Angular, Django, Flask, Docker, Kubernetes, Terraform"
	p := newExtractor(t).Extract(text, domain.KindResume)

	assert.Len(t, p.Skills, 20)
	assert.Equal(t, "Go", p.Skills[0])
}

func TestExtract_DegreeOnOwnLineTakesInstitutionFromNextLine(t *testing.T) {
	text := "Education\nMaster of Science in Data Science\nUniversity of Toronto\n2016 - 2018"
	p := newExtractor(t).Extract(text, domain.KindResume)

	require.Len(t, p.Education, 1)
	assert.Equal(t, "Master of Science", p.Education[0].Degree)
	assert.Equal(t, "Data Science", p.Education[0].Field)
	assert.Equal(t, "University of Toronto", p.Education[0].Institution)
	assert.Equal(t, "2018", p.Education[0].Year)
}

func TestExtract_CertificateKindUsesWholeText(t *testing.T) {
	text := "Kubernetes Administrator\nCloud Native Computing Foundation\nIssued 2023"
	x := newExtractor(t)

	resume := x.Extract(text, domain.KindResume)
	cert := x.Extract(text, domain.KindCertificate)

	assert.Empty(t, resume.Certifications)
	require.Len(t, cert.Certifications, 1)
	assert.Equal(t, "Kubernetes Administrator", cert.Certifications[0].Name)
	assert.Equal(t, "2023", cert.Certifications[0].Year)
}

func TestExtract_CertificationLineFallback(t *testing.T) {
	text := "Certifications\n- first aid responder\n- forklift operation"
	p := newExtractor(t).Extract(text, domain.KindResume)

	assert.Equal(t, []domain.Certification{
		{Name: "first aid responder"},
		{Name: "forklift operation"},
	}, p.Certifications)
}

func TestExtract_AccomplishmentLinesAreNotPositions(t *testing.T) {
	text := "Experience\nPlatform Engineer at Initech\n2018 - 2022\nLed the Migration of Services, Reduced Costs\nManaged Vendors, Budgets\n"

	p := newExtractor(t).Extract(text, domain.KindResume)

	require.Len(t, p.Experience, 1)
	assert.Equal(t, "Platform Engineer", p.Experience[0].Title)
	assert.Equal(t, "Initech", p.Experience[0].Company)
	assert.Contains(t, p.Experience[0].Description, "Led the Migration of Services")
}

func TestExtract_PhoneNeedsTenDigits(t *testing.T) {
	p := newExtractor(t).Extract("Jane Doe\nWorked 2015 - 2019\nCall +44 20 7946 0958", domain.KindResume)

	assert.Equal(t, "+44 20 7946 0958", p.PersonalInfo.Phone)
}

func TestExtract_LocationLabel(t *testing.T) {
	p := newExtractor(t).Extract("Jane Doe\nLocation: Berlin, Germany", domain.KindResume)

	assert.Equal(t, "Berlin, Germany", p.PersonalInfo.Location)
}

func TestExtract_Deterministic(t *testing.T) {
	x := newExtractor(t)
	a := x.Extract(resumeText, domain.KindResume)
	b := x.Extract(resumeText, domain.KindResume)

	assert.Equal(t, a, b)
}

func TestInferKind(t *testing.T) {
	rules, err := entity.DefaultRules()
	require.NoError(t, err)

	assert.Equal(t, domain.KindCertificate, rules.InferKind("aws_certificate.pdf"))
	assert.Equal(t, domain.KindTranscript, rules.InferKind("/tmp/Transcript-2019.PDF"))
	assert.Equal(t, domain.KindResume, rules.InferKind("jane_doe_cv.docx"))
}

func TestLoadRules_Errors(t *testing.T) {
	_, err := entity.LoadRules([]byte("phrase: '[A-Z]+'\nsections: {}"))
	assert.ErrorContains(t, err, "section")

	_, err = entity.LoadRules([]byte(":: not yaml"))
	assert.Error(t, err)
}

func TestFindSection_EndsAtNextHeader(t *testing.T) {
	rules, err := entity.DefaultRules()
	require.NoError(t, err)
	lines := strings.Split("Intro\nExperience\nEngineer at Foo\nEducation\nBSc in Maths, Bar", "\n")

	span, ok := rules.FindSection(lines, entity.SectionExperience)

	require.True(t, ok)
	assert.True(t, span.Header)
	assert.Equal(t, "Engineer at Foo", span.Text)
}

func TestFindSection_FallsBackToKeywordLine(t *testing.T) {
	rules, err := entity.DefaultRules()
	require.NoError(t, err)
	lines := strings.Split("Jane\nCompleted a bachelor degree in physics at a small college in Ohio\nMore text", "\n")

	span, ok := rules.FindSection(lines, entity.SectionEducation)

	require.True(t, ok)
	assert.False(t, span.Header)
	assert.True(t, strings.HasPrefix(span.Text, "Completed a bachelor degree"))
}

func TestFindSection_HeaderOnlyHasNoFallback(t *testing.T) {
	rules, err := entity.DefaultRules()
	require.NoError(t, err)
	lines := strings.Split("My objective in this long sentence is to not be a header at all", "\n")

	_, ok := rules.FindSection(lines, entity.SectionObjective)

	assert.False(t, ok)
}
