package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codetrack/internal/common"
	"codetrack/internal/domain/model"
)

type StudentRepository interface {
	// Upsert creates or updates the student keyed by email. The cached
	// row number is intentionally not touched here; only the Row
	// Resolver refreshes it.
	Upsert(ctx context.Context, s *model.Student) error
	FindByEmail(ctx context.Context, email string) (*model.Student, error)
	// UpdateRowNumber persists a freshly verified row cache value.
	UpdateRowNumber(ctx context.Context, id string, rowNumber int) error
}

type pgStudentRepository struct {
	db *sql.DB
}

func NewPgStudentRepository(db *sql.DB) StudentRepository {
	return &pgStudentRepository{db: db}
}

func (r *pgStudentRepository) Upsert(ctx context.Context, s *model.Student) error {
	query := `INSERT INTO students (id, email, full_name, github_handle, sheet_id,
	              token_ciphertext, token_iv, token_auth_tag, github_username, repo_name, created_at)
	          VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (email) DO UPDATE SET
	              full_name = COALESCE(NULLIF(EXCLUDED.full_name, ''), students.full_name),
	              github_handle = COALESCE(NULLIF(EXCLUDED.github_handle, ''), students.github_handle),
	              sheet_id = EXCLUDED.sheet_id,
	              token_ciphertext = EXCLUDED.token_ciphertext,
	              token_iv = EXCLUDED.token_iv,
	              token_auth_tag = EXCLUDED.token_auth_tag,
	              github_username = EXCLUDED.github_username,
	              repo_name = EXCLUDED.repo_name`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Email, s.FullName, s.GithubHandle, s.SheetID,
		s.TokenCiphertext, s.TokenIV, s.TokenAuthTag, s.GithubUsername, s.RepoName, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgStudentRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgStudentRepository) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	query := `SELECT id, email, COALESCE(full_name, ''), COALESCE(github_handle, ''), sheet_id,
	              COALESCE(row_number, 0),
	              COALESCE(token_ciphertext, ''), COALESCE(token_iv, ''), COALESCE(token_auth_tag, ''),
	              COALESCE(github_username, ''), repo_name, created_at
	          FROM students WHERE email = LOWER($1)`
	var s model.Student
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&s.ID, &s.Email, &s.FullName, &s.GithubHandle, &s.SheetID,
		&s.RowNumber,
		&s.TokenCiphertext, &s.TokenIV, &s.TokenAuthTag,
		&s.GithubUsername, &s.RepoName, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %s: %w", email, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("pgStudentRepository.FindByEmail: %w", err)
	}
	return &s, nil
}

func (r *pgStudentRepository) UpdateRowNumber(ctx context.Context, id string, rowNumber int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE students SET row_number = $1 WHERE id = $2`, rowNumber, id)
	if err != nil {
		return fmt.Errorf("pgStudentRepository.UpdateRowNumber: %w", err)
	}
	return nil
}
