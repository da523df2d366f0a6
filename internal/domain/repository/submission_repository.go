package repository

import (
	"context"
	"database/sql"
	"fmt"

	"codetrack/internal/domain/model"
)

type SubmissionRepository interface {
	// Create appends one submission record. Records are never mutated
	// or deleted afterwards.
	Create(ctx context.Context, sub *model.Submission) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, student_id, question_id, attempt, code_url, time_taken, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.StudentID, sub.QuestionID, sub.Attempt, sub.CodeURL, sub.TimeTaken, sub.SubmittedAt)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}
