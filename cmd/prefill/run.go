package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"intake/internal/app"
	"intake/internal/config"
	"intake/internal/csvexport"
	"intake/internal/domain"
	"intake/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run [files...]",
	Short: "Extract a profile from the files and answer the question set",
	Long: "Extract a profile from the given documents and answer every question. Questions come from " +
		"--questions (YAML or XLSX) or, when omitted, from the configured database.",
	Args: cobra.MinimumNArgs(1),
	RunE: runPrefill,
}

var (
	runQuestionsFile string
	runOutputFile    string
	runCSVFile       string
)

func init() {
	runCmd.Flags().StringVarP(&runQuestionsFile, "questions", "q", "", "Path to a questions YAML or XLSX file")
	runCmd.Flags().StringVarP(&runOutputFile, "out", "o", "", "Write the result JSON here instead of stdout")
	runCmd.Flags().StringVar(&runCSVFile, "csv", "", "Also write the answers as CSV to this path")

	rootCmd.AddCommand(runCmd)
}

func runPrefill(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// Documents are staged on local disk regardless of the server's backend.
	cfg.Storage.Backend = "local"

	opts := app.Options{}
	if runQuestionsFile != "" {
		qs, err := readQuestions(runQuestionsFile)
		if err != nil {
			return err
		}
		opts.Questions = app.StaticQuestions(qs)
		opts.SkipDB = true
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, logger, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	files, closeFiles, err := openFiles(args)
	if err != nil {
		return err
	}
	defer closeFiles()

	result, runErr := a.Prefill.Prefill(ctx, service.PrefillInput{Files: files})
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("prefill: run ended early, writing partial result", zap.Error(runErr))
	}

	if err := writeJSON(cmd.OutOrStdout(), runOutputFile, result); err != nil {
		return err
	}
	if runCSVFile != "" {
		questions, err := a.Prefill.ListQuestions(ctx)
		if err != nil {
			return fmt.Errorf("loading questions for csv: %w", err)
		}
		if err := writeCSV(runCSVFile, questions, result); err != nil {
			return err
		}
	}
	return runErr
}

func readQuestions(path string) ([]domain.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening questions file: %w", err)
	}
	defer func() { _ = f.Close() }()

	qs, err := app.LoadQuestions(path, f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return qs, nil
}

func openFiles(paths []string) ([]service.UploadedFile, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]service.UploadedFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening %s: %w", p, err)
		}
		opened = append(opened, f)
		info, err := f.Stat()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("stat %s: %w", p, err)
		}
		files = append(files, service.UploadedFile{
			Name: filepath.Base(p),
			Size: info.Size(),
			Body: f,
		})
	}
	return files, closeAll, nil
}

func writeJSON(stdout io.Writer, path string, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if path == "" {
		_, err = fmt.Fprintln(stdout, string(jsonBytes))
		return err
	}
	if err := os.WriteFile(path, jsonBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func writeCSV(path string, questions []domain.Question, result *domain.PrefillResult) error {
	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteResult(questions, result); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write csv file: %w", err)
	}
	return nil
}
