package sqlrepo_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/config"
	"intake/internal/domain"
	"intake/internal/repository/sqlrepo"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := sqlrepo.NewDB(&config.DBConfig{
		Driver: sqlrepo.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "intake.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, sqlrepo.Migrate(conn))
	return conn
}

func ptr(f float64) *float64 { return &f }

func TestNewDB_UnsupportedDriver(t *testing.T) {
	_, err := sqlrepo.NewDB(&config.DBConfig{Driver: "mysql"})

	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrate_Idempotent(t *testing.T) {
	conn := newTestDB(t)

	assert.NoError(t, sqlrepo.Migrate(conn))
}

func TestQuestionRepo_ReplaceAndListActive(t *testing.T) {
	conn := newTestDB(t)
	repo := sqlrepo.NewQuestionRepo(conn)
	ctx := context.Background()

	require.NoError(t, repo.Replace(ctx, []domain.Question{
		{ID: "skills", Text: "Which skill?", Type: domain.QuestionTypeMultipleChoice, Options: []string{"Go", "SQL"}, Category: "skills"},
		{ID: "certs", Text: "Any certifications?", Type: domain.QuestionTypeYesNo},
		{ID: "cv", Text: "Upload your CV", Type: domain.QuestionTypeUpload},
	}))

	questions, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "skills", questions[0].ID)
	assert.Equal(t, []string{"Go", "SQL"}, questions[0].Options)
	assert.Equal(t, "skills", questions[0].Category)
	assert.Equal(t, domain.QuestionTypeYesNo, questions[1].Type)
	assert.Empty(t, questions[1].Options)
	assert.Equal(t, "cv", questions[2].ID)

	// replacing reorders and deactivates questions that are no longer listed
	require.NoError(t, repo.Replace(ctx, []domain.Question{
		{ID: "cv", Text: "Upload your resume", Type: domain.QuestionTypeUpload},
		{ID: "skills", Text: "Which skill?", Type: domain.QuestionTypeMultipleChoice, Options: []string{"Go"}, Category: "skills"},
	}))

	questions, err = repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "cv", questions[0].ID)
	assert.Equal(t, "Upload your resume", questions[0].Text)
	assert.Equal(t, []string{"Go"}, questions[1].Options)
}

func TestQuestionRepo_ListActiveEmpty(t *testing.T) {
	questions, err := sqlrepo.NewQuestionRepo(newTestDB(t)).ListActive(context.Background())

	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestPrefillRepo_RecordAndGetRun(t *testing.T) {
	conn := newTestDB(t)
	repo := sqlrepo.NewPrefillRepo(conn)
	ctx := context.Background()

	profile := domain.NewStructuredProfile()
	profile.Skills = []string{"Go", "SQL"}
	profile.PersonalInfo.Name = "Jane Doe"

	rec := domain.PrefillRecord{
		RunID:   uuid.New(),
		Profile: profile,
		Mappings: []domain.QuestionMapping{
			{QuestionID: "a-skills", Bucket: domain.BucketAutoFill, QuestionType: domain.InferredSkills, Confidence: ptr(0.667)},
			{QuestionID: "b-certs", Bucket: domain.BucketAISuggestion, QuestionType: domain.InferredCertifications},
			{QuestionID: "c-cv", Bucket: domain.BucketNoMatch, QuestionType: domain.InferredFileUpload},
		},
		Answers: []domain.Answer{
			{QuestionID: "a-skills", Value: "Go", Confidence: 0.667, Source: domain.SourceDocumentParsing},
			{QuestionID: "b-certs", Value: "Not specified", Confidence: 0.3, Source: domain.SourceFallback,
				Metadata: map[string]any{"reason": "generator_error"}},
		},
		Summary: domain.Summary{DocumentsTotal: 1, DocumentsParsed: 1, QuestionsTotal: 3, AutoFill: 1, AISuggestion: 1, NoMatch: 1, FallbackAnswers: 1},
	}
	require.NoError(t, repo.Record(ctx, rec))

	run, err := repo.GetRun(ctx, rec.RunID)
	require.NoError(t, err)
	assert.Equal(t, rec.RunID.String(), run.ID)
	assert.Equal(t, "Jane Doe", run.Profile.V.PersonalInfo.Name)
	assert.Equal(t, []string{"Go", "SQL"}, run.Profile.V.Skills)
	assert.Equal(t, rec.Summary, run.Summary.V)
	assert.False(t, run.CreatedAt.IsZero())

	require.Len(t, run.Answers, 3)
	assert.Equal(t, "Go", run.Answers[0].Value.String)
	assert.InDelta(t, 0.667, run.Answers[0].MappingConfidence.Float64, 1e-9)
	assert.Equal(t, "fallback", run.Answers[1].Source.String)
	assert.Equal(t, "generator_error", run.Answers[1].Metadata.V["reason"])
	assert.False(t, run.Answers[1].MappingConfidence.Valid)
	assert.Equal(t, domain.BucketNoMatch, run.Answers[2].Bucket)
	assert.False(t, run.Answers[2].Value.Valid)
}

func TestPrefillRepo_RecordDuplicateRunFails(t *testing.T) {
	repo := sqlrepo.NewPrefillRepo(newTestDB(t))
	rec := domain.PrefillRecord{RunID: uuid.New(), Profile: domain.NewStructuredProfile()}

	require.NoError(t, repo.Record(context.Background(), rec))
	assert.Error(t, repo.Record(context.Background(), rec))
}

func TestPrefillRepo_GetRunNotFound(t *testing.T) {
	_, err := sqlrepo.NewPrefillRepo(newTestDB(t)).GetRun(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
