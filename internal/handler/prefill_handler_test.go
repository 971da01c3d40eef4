package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"intake/internal/domain"
	"intake/internal/handler"
	"intake/internal/service"
	"intake/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type formFile struct {
	name    string
	content string
}

func multipartBody(t *testing.T, files []formFile, questions string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	if questions != "" {
		require.NoError(t, writer.WriteField("questions", questions))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func newPrefillContext(t *testing.T, target string, files []formFile, questions string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body, contentType := multipartBody(t, files, questions)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, target, body)
	c.Request.Header.Set("Content-Type", contentType)
	return c, w
}

func sampleResult() *domain.PrefillResult {
	conf := 0.667
	return &domain.PrefillResult{
		RunID:     uuid.MustParse("8d4c3b9e-2f6a-4d47-9c1e-6b0f3e2a1c55"),
		Documents: []domain.ParsedDocument{{FileName: "resume.txt", DocumentType: "text", Success: true}},
		Profile:   domain.NewStructuredProfile(),
		Mappings: []domain.QuestionMapping{
			{QuestionID: "q1", Bucket: domain.BucketAutoFill, QuestionType: domain.InferredSkills, Confidence: &conf},
		},
		Answers: []domain.Answer{
			{QuestionID: "q1", Value: "Go", Confidence: 0.667, Source: domain.SourceDocumentParsing},
		},
		Rejected: []domain.RejectedQuestion{},
		Summary:  domain.Summary{DocumentsTotal: 1, DocumentsParsed: 1, QuestionsTotal: 1, AutoFill: 1},
	}
}

func TestPrefillHandler_Prefill_Success(t *testing.T) {
	svc := new(mocks.MockPrefillService)
	h := handler.NewPrefillHandler(svc)

	var got service.PrefillInput
	var contents []string
	svc.On("Prefill", mock.Anything, mock.AnythingOfType("service.PrefillInput")).
		Run(func(args mock.Arguments) {
			got = args.Get(1).(service.PrefillInput)
			for _, f := range got.Files {
				data, _ := io.ReadAll(f.Body)
				contents = append(contents, string(data))
			}
		}).
		Return(sampleResult(), nil)

	c, w := newPrefillContext(t, "/api/v1/prefill", []formFile{
		{name: "resume.txt", content: "Jane Doe"},
		{name: "cover_letter.txt", content: "Dear team"},
	}, "")

	h.Prefill(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)

	require.Len(t, got.Files, 2)
	assert.Equal(t, "resume.txt", got.Files[0].Name)
	assert.Equal(t, int64(len("Jane Doe")), got.Files[0].Size)
	assert.Equal(t, "cover_letter.txt", got.Files[1].Name)
	assert.Equal(t, []string{"Jane Doe", "Dear team"}, contents)
	assert.Empty(t, got.Questions)
	svc.AssertExpectations(t)
}

func TestPrefillHandler_Prefill_QuestionsOverride(t *testing.T) {
	svc := new(mocks.MockPrefillService)
	h := handler.NewPrefillHandler(svc)

	svc.On("Prefill", mock.Anything, mock.MatchedBy(func(in service.PrefillInput) bool {
		return len(in.Questions) == 1 && in.Questions[0].ID == "skills" &&
			in.Questions[0].Type == domain.QuestionTypeText
	})).Return(sampleResult(), nil)

	c, w := newPrefillContext(t, "/api/v1/prefill",
		[]formFile{{name: "resume.txt", content: "Jane"}},
		`[{"id":"skills","text":"List your skills","type":"text"}]`)

	h.Prefill(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestPrefillHandler_Prefill_InvalidQuestionsJSON(t *testing.T) {
	svc := new(mocks.MockPrefillService)
	h := handler.NewPrefillHandler(svc)

	c, w := newPrefillContext(t, "/api/v1/prefill",
		[]formFile{{name: "resume.txt", content: "Jane"}}, `{not json`)

	h.Prefill(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_QUESTIONS")
	svc.AssertNotCalled(t, "Prefill", mock.Anything, mock.Anything)
}

func TestPrefillHandler_Prefill_NoFiles(t *testing.T) {
	svc := new(mocks.MockPrefillService)
	h := handler.NewPrefillHandler(svc)

	c, w := newPrefillContext(t, "/api/v1/prefill", nil, "")

	h.Prefill(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_FILES")
}

func TestPrefillHandler_Prefill_NotMultipart(t *testing.T) {
	svc := new(mocks.MockPrefillService)
	h := handler.NewPrefillHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/prefill", http.NoBody)

	h.Prefill(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrefillHandler_Prefill_PartialResultOnFatalError(t *testing.T) {
	svc := new(mocks.MockPrefillService)
	h := handler.NewPrefillHandler(svc)

	partial := sampleResult()
	partial.Answers = []domain.Answer{}
	partial.Mappings = []domain.QuestionMapping{}
	svc.On("Prefill", mock.Anything, mock.Anything).Return(partial, domain.ErrAllDocumentsFailed)

	c, w := newPrefillContext(t, "/api/v1/prefill", []formFile{{name: "scan.pdf", content: "%PDF-1.4"}}, "")

	h.Prefill(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp struct {
		Success bool                  `json:"success"`
		Data    *domain.PrefillResult `json:"data"`
		Error   *handler.APIError     `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALL_DOCUMENTS_FAILED", resp.Error.Code)
	require.NotNil(t, resp.Data)
	assert.Equal(t, partial.RunID, resp.Data.RunID)
}

func TestPrefillHandler_Prefill_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unsupported type", fmt.Errorf("a.exe: %w", domain.ErrUnsupportedFileType), http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"too large", fmt.Errorf("big.pdf: %w", domain.ErrFileTooLarge), http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"upload failed", domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{"no questions", domain.ErrNoQuestions, http.StatusUnprocessableEntity, "NO_QUESTIONS"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockPrefillService)
			h := handler.NewPrefillHandler(svc)
			svc.On("Prefill", mock.Anything, mock.Anything).Return(nil, tt.err)

			c, w := newPrefillContext(t, "/api/v1/prefill", []formFile{{name: "resume.txt", content: "Jane"}}, "")

			h.Prefill(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp handler.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestPrefillHandler_Prefill_CSV(t *testing.T) {
	svc := new(mocks.MockPrefillService)
	h := handler.NewPrefillHandler(svc)

	svc.On("Prefill", mock.Anything, mock.Anything).Return(sampleResult(), nil)
	svc.On("ListQuestions", mock.Anything).Return([]domain.Question{
		{ID: "q1", Text: "Your strongest skill?", Type: domain.QuestionTypeText},
	}, nil)

	c, w := newPrefillContext(t, "/api/v1/prefill?format=csv", []formFile{{name: "resume.txt", content: "Jane"}}, "")

	h.Prefill(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "prefill_8d4c3b9e-2f6a-4d47-9c1e-6b0f3e2a1c55")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Question ID")
	assert.Contains(t, lines[1], "Your strongest skill?")
	assert.Contains(t, lines[1], "0.667")
	svc.AssertExpectations(t)
}

func TestPrefillHandler_ListQuestions(t *testing.T) {
	svc := new(mocks.MockPrefillService)
	h := handler.NewPrefillHandler(svc)
	svc.On("ListQuestions", mock.Anything).Return(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/questions", http.NoBody)

	h.ListQuestions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
}

func TestPrefillHandler_ListQuestions_Error(t *testing.T) {
	svc := new(mocks.MockPrefillService)
	h := handler.NewPrefillHandler(svc)
	svc.On("ListQuestions", mock.Anything).Return(nil, errors.New("db down"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/questions", http.NoBody)

	h.ListQuestions(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
