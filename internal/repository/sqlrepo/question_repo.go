package sqlrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"intake/internal/domain"
)

type questionRow struct {
	ID       string              `db:"id"`
	Text     string              `db:"text"`
	Type     domain.QuestionType `db:"type"`
	Options  JSON[[]string]      `db:"options"`
	Category string              `db:"category"`
}

// QuestionRepo serves the admin-defined question set.
type QuestionRepo struct {
	db *sqlx.DB
}

// NewQuestionRepo creates a SQL-backed port.QuestionSource.
func NewQuestionRepo(db *sqlx.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// ListActive returns active questions ordered by position.
func (r *QuestionRepo) ListActive(ctx context.Context) ([]domain.Question, error) {
	var rows []questionRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(
		`SELECT id, text, type, options, category FROM questions
		 WHERE active = ? ORDER BY position, id`), true)
	if err != nil {
		return nil, fmt.Errorf("questionRepo.ListActive: %w", err)
	}

	out := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Question{
			ID:       row.ID,
			Text:     row.Text,
			Type:     row.Type,
			Options:  row.Options.V,
			Category: row.Category,
		})
	}
	return out, nil
}

// Replace makes questions the active set, in order. Questions not listed are deactivated, not deleted.
func (r *QuestionRepo) Replace(ctx context.Context, questions []domain.Question) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("questionRepo.Replace begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE questions SET active = ?, updated_at = ?`), false, now); err != nil {
		return fmt.Errorf("questionRepo.Replace deactivate: %w", err)
	}

	upsert := tx.Rebind(`INSERT INTO questions
		(id, position, text, type, options, category, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			position = excluded.position,
			text = excluded.text,
			type = excluded.type,
			options = excluded.options,
			category = excluded.category,
			active = excluded.active,
			updated_at = excluded.updated_at`)
	for i, q := range questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		_, err := tx.ExecContext(ctx, upsert,
			q.ID, i, q.Text, q.Type, JSON[[]string]{V: options}, q.Category, true, now, now)
		if err != nil {
			return fmt.Errorf("questionRepo.Replace %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("questionRepo.Replace commit: %w", err)
	}
	return nil
}
