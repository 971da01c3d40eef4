package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"intake/internal/domain"
)

// StaticQuestions is a fixed question set, used when no database is configured.
type StaticQuestions []domain.Question

// ListActive returns the whole set.
func (s StaticQuestions) ListActive(context.Context) ([]domain.Question, error) {
	return s, nil
}

type questionFile struct {
	Questions []domain.Question `yaml:"questions"`
}

// LoadQuestionsYAML reads a question set of the form `questions: [{id, text, type, options, category}]`.
func LoadQuestionsYAML(r io.Reader) ([]domain.Question, error) {
	var f questionFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding questions yaml: %w", err)
	}
	return f.Questions, nil
}

// xlsx header names, matched case-insensitively.
const (
	colID       = "id"
	colText     = "text"
	colType     = "type"
	colOptions  = "options"
	colCategory = "category"
)

// LoadQuestionsXLSX reads a question set from the first sheet of a workbook. The first row
// holds the column names id, text, type, options and category; options are separated by "|".
// Rows without an id are skipped.
func LoadQuestionsXLSX(r io.Reader) ([]domain.Question, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colID, colText, colType} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("workbook is missing the %q column", required)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var questions []domain.Question
	for _, row := range rows[1:] {
		id := cell(row, colID)
		if id == "" {
			continue
		}
		q := domain.Question{
			ID:       id,
			Text:     cell(row, colText),
			Type:     domain.QuestionType(strings.ToLower(cell(row, colType))),
			Category: cell(row, colCategory),
		}
		for _, opt := range strings.Split(cell(row, colOptions), "|") {
			if opt = strings.TrimSpace(opt); opt != "" {
				q.Options = append(q.Options, opt)
			}
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// LoadQuestions picks the reader by file extension: .xlsx workbooks, YAML otherwise.
func LoadQuestions(name string, r io.Reader) ([]domain.Question, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return LoadQuestionsXLSX(r)
	}
	return LoadQuestionsYAML(r)
}
