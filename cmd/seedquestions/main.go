// Command seedquestions loads the active question set into the questions table.
// Accepts a YAML file or an Excel workbook (first sheet, columns id/text/type/options/category).
// Usage: go run ./cmd/seedquestions questions.xlsx
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"intake/internal/app"
	"intake/internal/classifier"
	"intake/internal/config"
	"intake/internal/repository/sqlrepo"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return errors.New("usage: seedquestions <questions.yaml|questions.xlsx>")
	}
	path := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open questions file: %w", err)
	}
	defer func() { _ = f.Close() }()

	questions, err := app.LoadQuestions(path, f)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	accepted, rejected := classifier.New(classifier.Config{ConfidenceCap: cfg.Pipeline.ConfidenceCap}, logger).
		Validate(questions)
	for _, r := range rejected {
		logger.Warn("seedquestions: skipping invalid question",
			zap.String("question_id", r.QuestionID),
			zap.String("reason", r.Reason),
		)
	}
	if len(accepted) == 0 {
		return fmt.Errorf("no valid questions in %s", path)
	}

	db, err := sqlrepo.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := sqlrepo.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if err := sqlrepo.NewQuestionRepo(db).Replace(context.Background(), accepted); err != nil {
		return fmt.Errorf("storing questions: %w", err)
	}

	logger.Info("seedquestions: question set replaced",
		zap.Int("active", len(accepted)),
		zap.Int("skipped", len(rejected)),
	)
	return nil
}
