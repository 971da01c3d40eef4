package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"intake/internal/app"
	"intake/internal/config"
	"intake/internal/domain"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract and merge a profile from the files without answering questions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

var extractOutputFile string

func init() {
	extractCmd.Flags().StringVarP(&extractOutputFile, "out", "o", "", "Write the profile JSON here instead of stdout")

	rootCmd.AddCommand(extractCmd)
}

type extractOutput struct {
	Documents []domain.ParsedDocument   `json:"documents"`
	Profile   *domain.StructuredProfile `json:"profile"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	docs := make([]domain.RawDocument, 0, len(args))
	for _, p := range args {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		docs = append(docs, domain.RawDocument{
			FileName: filepath.Base(p),
			Size:     int64(len(data)),
			Content:  data,
		})
	}

	// every document carries its bytes, so no file store is needed
	p, err := app.NewPipeline(cfg, nil, logger)
	if err != nil {
		return err
	}
	parsed, merged, runErr := p.Profile(cmd.Context(), docs)
	if runErr != nil {
		logger.Warn("prefill: extraction incomplete", zap.Error(runErr))
	}

	if err := writeJSON(cmd.OutOrStdout(), extractOutputFile, extractOutput{Documents: parsed, Profile: merged}); err != nil {
		return err
	}
	return runErr
}
