package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"intake/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// BucketRejected marks rows for questions that failed validation.
const BucketRejected = "rejected"

// columns defines the CSV header row.
var columns = []string{
	"Question ID",
	"Question",
	"Bucket",
	"Question Type",
	"Confidence",
	"Answer",
	"Source",
	"Fallback Reason",
}

// Writer wraps csv.Writer for exporting prefill answers as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResult writes one row per classified question, in mapping order, followed by
// one row per rejected question. questions supplies the question text.
func (w *Writer) WriteResult(questions []domain.Question, result *domain.PrefillResult) error {
	text := make(map[string]string, len(questions))
	for _, q := range questions {
		text[q.ID] = q.Text
	}
	answers := make(map[string]domain.Answer, len(result.Answers))
	for _, a := range result.Answers {
		answers[a.QuestionID] = a
	}

	for _, m := range result.Mappings {
		a, answered := answers[m.QuestionID]
		if err := w.csv.Write(mappingToRow(m, text[m.QuestionID], a, answered)); err != nil {
			return err
		}
	}
	for _, r := range result.Rejected {
		row := make([]string, len(columns))
		row[0] = r.QuestionID
		row[1] = text[r.QuestionID]
		row[2] = BucketRejected
		row[7] = r.Reason
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// mappingToRow converts one mapping and its optional answer to a row.
// Unanswered (no-match) questions leave the answer columns empty.
func mappingToRow(m domain.QuestionMapping, question string, a domain.Answer, answered bool) []string {
	row := make([]string, len(columns))
	row[0] = m.QuestionID
	row[1] = question
	row[2] = string(m.Bucket)
	row[3] = string(m.QuestionType)
	if m.Confidence != nil {
		row[4] = formatConfidence(*m.Confidence)
	}
	if !answered {
		return row
	}

	row[4] = formatConfidence(a.Confidence)
	row[5] = a.Value
	row[6] = string(a.Source)
	if reason, ok := a.Metadata["reason"].(string); ok {
		row[7] = reason
	}
	return row
}

func formatConfidence(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
