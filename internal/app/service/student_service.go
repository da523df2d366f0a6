package service

import (
	"context"
	"fmt"
	"strings"

	"codetrack/internal/common"
	"codetrack/internal/common/security"
	"codetrack/internal/domain/model"
	"codetrack/internal/domain/repository"
	"codetrack/internal/platform/sheets"

	"go.uber.org/zap"
)

type StudentService struct {
	studentRepo repository.StudentRepository
	grid        sheets.API
	cipher      *security.TokenCipher
	log         *zap.Logger
}

func NewStudentService(
	studentRepo repository.StudentRepository,
	grid sheets.API,
	cipher *security.TokenCipher,
	log *zap.Logger,
) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		grid:        grid,
		cipher:      cipher,
		log:         log,
	}
}

// LoadWithToken fetches a student by email and decrypts their
// remote-write credential. The decrypted token is returned alongside the
// record and never stored.
func (s *StudentService) LoadWithToken(ctx context.Context, email string) (*model.Student, string, error) {
	student, err := s.studentRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if !student.HasToken() {
		return student, "", nil
	}
	token, err := s.cipher.Decrypt(student.TokenCiphertext, student.TokenIV, student.TokenAuthTag)
	if err != nil {
		return nil, "", common.Errorf("decrypting credential for %s: %w", email, err)
	}
	return student, token, nil
}

// ResolveRow finds the student's 1-based row in their sheet. The cached
// row number is verified with a single-cell read before being trusted; a
// stale or missing cache falls back to a full scan of column A below the
// header block, and the refreshed value is persisted. The returned row
// always contained the student's identity at the moment of the call.
func (s *StudentService) ResolveRow(ctx context.Context, student *model.Student, tabName string) (int, error) {
	email := strings.ToLower(strings.TrimSpace(student.Email))
	fullName := strings.ToLower(strings.TrimSpace(student.FullName))

	if student.RowNumber > 0 {
		verifyRange := fmt.Sprintf("A%d", student.RowNumber)
		if tabName != "" {
			verifyRange = fmt.Sprintf("%s!A%d", tabName, student.RowNumber)
		}
		rows, err := s.grid.Values(ctx, student.SheetID, verifyRange)
		if err != nil {
			// Fall through to the full scan.
			s.log.Warn("cached row verification read failed",
				zap.String("email", student.Email), zap.Error(err))
		} else if identityMatches(cellAt(rows, 0, 0), email, fullName) {
			return student.RowNumber, nil
		}
	}

	scanRange := "A:A"
	if tabName != "" {
		scanRange = tabName + "!A:A"
	}
	rows, err := s.grid.Values(ctx, student.SheetID, scanRange)
	if err != nil {
		return 0, common.Errorf("scanning column A of sheet %s: %w: %w", student.SheetID, common.ErrUpstream, err)
	}

	for i := headerRows; i < len(rows); i++ {
		if !identityMatches(cellAt(rows, i, 0), email, fullName) {
			continue
		}
		row := i + 1 // 1-based
		if err := s.studentRepo.UpdateRowNumber(ctx, student.ID, row); err != nil {
			// The cache is advisory; the next call re-scans.
			s.log.Warn("persisting refreshed row cache failed",
				zap.String("email", student.Email), zap.Error(err))
		}
		student.RowNumber = row
		return row, nil
	}

	return 0, common.Errorf("row for student %s in sheet %s: %w", student.Email, student.SheetID, common.ErrNotFound)
}

func identityMatches(cell, email, fullName string) bool {
	v := strings.ToLower(strings.TrimSpace(cell))
	if v == "" {
		return false
	}
	return (email != "" && v == email) || (fullName != "" && v == fullName)
}

func cellAt(rows [][]string, i, j int) string {
	if i >= len(rows) || j >= len(rows[i]) {
		return ""
	}
	return rows[i][j]
}
