package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codetrack/internal/common"
	"codetrack/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type SheetRepository interface {
	Create(ctx context.Context, sheet *model.TrackedSheet) error
	Delete(ctx context.Context, sheetID string) error
	List(ctx context.Context) ([]model.TrackedSheet, error)
	FindBySheetID(ctx context.Context, sheetID string) (*model.TrackedSheet, error)
	FindByName(ctx context.Context, name string) (*model.TrackedSheet, error)
}

type pgSheetRepository struct {
	db *sql.DB
}

func NewPgSheetRepository(db *sql.DB) SheetRepository {
	return &pgSheetRepository{db: db}
}

func (r *pgSheetRepository) Create(ctx context.Context, s *model.TrackedSheet) error {
	query := `INSERT INTO tracked_sheets (id, sheet_id, name, created_at)
	          VALUES ($1, $2, NULLIF($3, ''), $4)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.SheetID, s.Name, s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique on sheet_id
			return fmt.Errorf("sheet %s is already tracked: %w", s.SheetID, common.ErrConflict)
		}
		return fmt.Errorf("pgSheetRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSheetRepository) Delete(ctx context.Context, sheetID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tracked_sheets WHERE sheet_id = $1`, sheetID)
	if err != nil {
		return fmt.Errorf("pgSheetRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sheet %s: %w", sheetID, common.ErrNotFound)
	}
	return nil
}

func (r *pgSheetRepository) List(ctx context.Context) ([]model.TrackedSheet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sheet_id, COALESCE(name, ''), created_at FROM tracked_sheets ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("pgSheetRepository.List: %w", err)
	}
	defer rows.Close()

	var sheets []model.TrackedSheet
	for rows.Next() {
		var s model.TrackedSheet
		if err := rows.Scan(&s.ID, &s.SheetID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgSheetRepository.List scan: %w", err)
		}
		sheets = append(sheets, s)
	}
	return sheets, rows.Err()
}

func (r *pgSheetRepository) FindBySheetID(ctx context.Context, sheetID string) (*model.TrackedSheet, error) {
	return r.findOne(ctx,
		`SELECT id, sheet_id, COALESCE(name, ''), created_at FROM tracked_sheets WHERE sheet_id = $1`, sheetID)
}

func (r *pgSheetRepository) FindByName(ctx context.Context, name string) (*model.TrackedSheet, error) {
	return r.findOne(ctx,
		`SELECT id, sheet_id, COALESCE(name, ''), created_at FROM tracked_sheets WHERE LOWER(name) = LOWER($1)`, name)
}

func (r *pgSheetRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.TrackedSheet, error) {
	var s model.TrackedSheet
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&s.ID, &s.SheetID, &s.Name, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pgSheetRepository.findOne: %w", err)
	}
	return &s, nil
}
