package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"intake/internal/domain"
)

// PrefillRepo records prefill runs.
type PrefillRepo struct {
	db *sqlx.DB
}

// NewPrefillRepo creates a SQL-backed port.ProfileSink.
func NewPrefillRepo(db *sqlx.DB) *PrefillRepo {
	return &PrefillRepo{db: db}
}

// Record writes the run and one answer row per mapping in a single transaction.
func (r *PrefillRepo) Record(ctx context.Context, rec domain.PrefillRecord) error {
	answers := make(map[string]domain.Answer, len(rec.Answers))
	for _, a := range rec.Answers {
		answers[a.QuestionID] = a
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("prefillRepo.Record begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO prefill_runs (id, profile, summary, created_at) VALUES (?, ?, ?, ?)`),
		rec.RunID.String(), JSON[*domain.StructuredProfile]{V: rec.Profile}, JSON[domain.Summary]{V: rec.Summary}, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("prefillRepo.Record run: %w", err)
	}

	insert := tx.Rebind(`INSERT INTO prefill_answers
		(run_id, question_id, bucket, inferred_type, mapping_confidence, value, confidence, source, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, m := range rec.Mappings {
		var (
			value      sql.NullString
			confidence sql.NullFloat64
			source     sql.NullString
			metadata   = map[string]any{}
		)
		if a, ok := answers[m.QuestionID]; ok {
			value = sql.NullString{String: a.Value, Valid: true}
			confidence = sql.NullFloat64{Float64: a.Confidence, Valid: true}
			source = sql.NullString{String: string(a.Source), Valid: true}
			if a.Metadata != nil {
				metadata = a.Metadata
			}
		}
		var mappingConf sql.NullFloat64
		if m.Confidence != nil {
			mappingConf = sql.NullFloat64{Float64: *m.Confidence, Valid: true}
		}

		_, err := tx.ExecContext(ctx, insert,
			rec.RunID.String(), m.QuestionID, m.Bucket, m.QuestionType, mappingConf,
			value, confidence, source, JSON[map[string]any]{V: metadata})
		if err != nil {
			return fmt.Errorf("prefillRepo.Record answer %s: %w", m.QuestionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("prefillRepo.Record commit: %w", err)
	}
	return nil
}

// StoredAnswer is one persisted answer row.
type StoredAnswer struct {
	QuestionID        string               `db:"question_id"`
	Bucket            domain.Bucket        `db:"bucket"`
	InferredType      domain.InferredType  `db:"inferred_type"`
	MappingConfidence sql.NullFloat64      `db:"mapping_confidence"`
	Value             sql.NullString       `db:"value"`
	Confidence        sql.NullFloat64      `db:"confidence"`
	Source            sql.NullString       `db:"source"`
	Metadata          JSON[map[string]any] `db:"metadata"`
}

// StoredRun is a persisted prefill run.
type StoredRun struct {
	ID        string                          `db:"id"`
	Profile   JSON[*domain.StructuredProfile] `db:"profile"`
	Summary   JSON[domain.Summary]            `db:"summary"`
	CreatedAt time.Time                       `db:"created_at"`
	Answers   []StoredAnswer                  `db:"-"`
}

// GetRun loads a recorded run with its answers in question id order.
func (r *PrefillRepo) GetRun(ctx context.Context, runID uuid.UUID) (*StoredRun, error) {
	var run StoredRun
	err := r.db.GetContext(ctx, &run, r.db.Rebind(
		`SELECT id, profile, summary, created_at FROM prefill_runs WHERE id = ?`), runID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("prefillRepo.GetRun: %w", err)
	}

	err = r.db.SelectContext(ctx, &run.Answers, r.db.Rebind(
		`SELECT question_id, bucket, inferred_type, mapping_confidence, value, confidence, source, metadata
		 FROM prefill_answers WHERE run_id = ? ORDER BY question_id`), runID.String())
	if err != nil {
		return nil, fmt.Errorf("prefillRepo.GetRun answers: %w", err)
	}
	return &run, nil
}
