package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"intake/internal/config"
)

// Runner executes an external command. It exists so OCR can be stubbed in tests.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Logger *zap.Logger
}

func (r ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if r.Logger != nil {
		fields := []zap.Field{
			zap.String("cmd", name),
			zap.String("args", strings.Join(args, " ")),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if err != nil {
			r.Logger.Error("extractor: exec failed", append(fields, zap.Error(err), zap.String("stderr", truncate(errb.String(), 8<<10)))...)
		} else {
			r.Logger.Debug("extractor: exec ok", append(fields, zap.Int("stdout_bytes", out.Len()))...)
		}
	}

	return out.Bytes(), errb.Bytes(), err
}

// OCRBackend recognizes text in images with tesseract after preprocessing.
type OCRBackend struct {
	runner    Runner
	tesseract string
	lang      string
	maxDim    int
	logger    *zap.Logger
}

// NewOCRBackend creates an OCRBackend from extractor settings.
func NewOCRBackend(cfg config.ExtractorConfig, runner Runner, logger *zap.Logger) *OCRBackend {
	tesseract := cfg.TesseractPath
	if tesseract == "" {
		tesseract = "tesseract"
	}
	lang := cfg.OCRLanguage
	if lang == "" {
		lang = "eng"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &OCRBackend{
		runner:    runner,
		tesseract: tesseract,
		lang:      lang,
		maxDim:    cfg.MaxImageDimension,
		logger:    logger,
	}
}

func (o *OCRBackend) Extract(ctx context.Context, data []byte, mediaType string) (string, error) {
	input, err := Preprocess(data, o.maxDim)
	if err != nil {
		o.logger.Warn("extractor: image preprocessing failed, using original",
			zap.String("media_type", mediaType),
			zap.Error(err),
		)
		input = data
	}

	// tesseract stdin stdout -l <lang>
	out, errb, err := o.runner.Run(ctx, input, o.tesseract, "stdin", "stdout", "-l", o.lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}

	return string(out), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
