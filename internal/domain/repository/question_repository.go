package repository

import (
	"context"
	"database/sql"
	"fmt"

	"codetrack/internal/domain/model"
)

type QuestionRepository interface {
	// Upsert inserts or overwrites the roster slot keyed by
	// (sheet_id, tab_name, link_col). Re-synchronization never creates
	// duplicates for the same key.
	Upsert(ctx context.Context, q *model.Question) error
	// ListBySheet returns all roster slots of a sheet, ordered by
	// (tab_name, link_col) so matcher scans are stable for a given
	// roster.
	ListBySheet(ctx context.Context, sheetID string) ([]model.Question, error)
}

type pgQuestionRepository struct {
	db *sql.DB
}

func NewPgQuestionRepository(db *sql.DB) QuestionRepository {
	return &pgQuestionRepository{db: db}
}

func (r *pgQuestionRepository) Upsert(ctx context.Context, q *model.Question) error {
	query := `INSERT INTO questions (id, sheet_id, tab_name, link_col, time_col, title, platform, problem_url, last_seen)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
	          ON CONFLICT (sheet_id, tab_name, link_col) DO UPDATE SET
	              time_col = EXCLUDED.time_col,
	              title = EXCLUDED.title,
	              platform = EXCLUDED.platform,
	              problem_url = EXCLUDED.problem_url,
	              last_seen = EXCLUDED.last_seen`
	_, err := r.db.ExecContext(ctx, query,
		q.ID, q.SheetID, q.TabName, q.LinkCol, q.TimeCol, q.Title, q.Platform, q.ProblemURL, q.LastSeen)
	if err != nil {
		return fmt.Errorf("pgQuestionRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgQuestionRepository) ListBySheet(ctx context.Context, sheetID string) ([]model.Question, error) {
	query := `SELECT id, sheet_id, tab_name, link_col, time_col, title, platform, COALESCE(problem_url, ''), last_seen
	          FROM questions WHERE sheet_id = $1 ORDER BY tab_name, link_col`
	rows, err := r.db.QueryContext(ctx, query, sheetID)
	if err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.ListBySheet: %w", err)
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.SheetID, &q.TabName, &q.LinkCol, &q.TimeCol,
			&q.Title, &q.Platform, &q.ProblemURL, &q.LastSeen); err != nil {
			return nil, fmt.Errorf("pgQuestionRepository.ListBySheet scan: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
