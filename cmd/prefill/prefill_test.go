package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadQuestions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "questions.yaml", "questions:\n  - id: q1\n    text: Name?\n    type: text\n")

	qs, err := readQuestions(path)

	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "q1", qs[0].ID)
}

func TestReadQuestions_Missing(t *testing.T) {
	_, err := readQuestions(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorContains(t, err, "opening questions file")
}

func TestOpenFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "resume.txt", "Jane Doe")

	files, closeFiles, err := openFiles([]string{a})
	require.NoError(t, err)
	defer closeFiles()

	require.Len(t, files, 1)
	assert.Equal(t, "resume.txt", files[0].Name)
	assert.Equal(t, int64(8), files[0].Size)

	_, _, err = openFiles([]string{a, filepath.Join(dir, "missing.pdf")})
	assert.ErrorContains(t, err, "missing.pdf")
}

func TestWriteJSON_Stdout(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, writeJSON(&out, "", map[string]int{"n": 1}))

	assert.JSONEq(t, `{"n":1}`, out.String())
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.csv")
	result := &domain.PrefillResult{
		Mappings: []domain.QuestionMapping{{QuestionID: "q1", Bucket: domain.BucketAISuggestion, QuestionType: domain.InferredGeneral}},
		Answers:  []domain.Answer{{QuestionID: "q1", Value: "Not specified", Confidence: 0.3, Source: domain.SourceFallback}},
	}

	require.NoError(t, writeCSV(path, []domain.Question{{ID: "q1", Text: "Anything else?"}}, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\xEF\xBB\xBF"))
	assert.Contains(t, string(data), "Anything else?")
	assert.Contains(t, string(data), "Not specified")
}
