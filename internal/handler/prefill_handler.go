package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"intake/internal/csvexport"
	"intake/internal/domain"
	"intake/internal/service"
)

// PrefillHandler handles document upload and answer prefill endpoints.
type PrefillHandler struct {
	prefillService service.PrefillService
}

// NewPrefillHandler creates a new PrefillHandler.
func NewPrefillHandler(prefillService service.PrefillService) *PrefillHandler {
	return &PrefillHandler{prefillService: prefillService}
}

// Prefill handles POST /api/v1/prefill
// @Summary Prefill answers from uploaded documents
// @Description Extracts a profile from the uploaded files and answers the active questions
// @Tags prefill
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Documents (repeat the field for several files)"
// @Param questions formData string false "JSON array of questions overriding the active set"
// @Param format query string false "csv for a CSV download of the answers"
// @Success 200 {object} APIResponse{data=domain.PrefillResult}
// @Failure 400 {object} APIResponse "Missing or unsupported files"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse "Partial result; no document could be read"
// @Router /prefill [post]
func (h *PrefillHandler) Prefill(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILES", "multipart form with a files field is required")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILES", "files field is required")
		return
	}

	var questions []domain.Question
	if raw := c.PostForm("questions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &questions); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_QUESTIONS", "questions must be a JSON array")
			return
		}
	}

	files := make([]service.UploadedFile, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read "+hdr.Filename)
			return
		}
		opened = append(opened, f)
		files = append(files, service.UploadedFile{
			Name:        hdr.Filename,
			Size:        hdr.Size,
			ContentType: hdr.Header.Get("Content-Type"),
			Body:        f,
		})
	}

	result, err := h.prefillService.Prefill(c.Request.Context(), service.PrefillInput{
		Files:     files,
		Questions: questions,
	})
	if err != nil {
		if result != nil {
			RespondPartial(c, err, result)
			return
		}
		HandleError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		h.writeCSV(c, questions, result)
		return
	}
	RespondOK(c, result)
}

func (h *PrefillHandler) writeCSV(c *gin.Context, questions []domain.Question, result *domain.PrefillResult) {
	if len(questions) == 0 {
		active, err := h.prefillService.ListQuestions(c.Request.Context())
		if err != nil {
			HandleError(c, err)
			return
		}
		questions = active
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteResult(questions, result); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename("prefill_" + result.RunID.String())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ListQuestions handles GET /api/v1/questions
// @Summary List active questions
// @Tags prefill
// @Produce json
// @Success 200 {object} APIResponse{data=[]domain.Question}
// @Router /questions [get]
func (h *PrefillHandler) ListQuestions(c *gin.Context) {
	questions, err := h.prefillService.ListQuestions(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	RespondOK(c, questions)
}
