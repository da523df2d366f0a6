package service

import (
	"context"
	"strings"
	"time"

	"codetrack/internal/common"
	"codetrack/internal/domain/model"
	"codetrack/internal/domain/repository"
	"codetrack/internal/platform/sheets"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// headerRows is the fixed header convention: rows 1-5, with platform
// labels on row 4 and hyperlinked question titles on row 5.
const headerRows = 5

// MappingService mirrors the human-authored rosters of all tracked
// sheets into question records.
type MappingService struct {
	sheetRepo    repository.SheetRepository
	questionRepo repository.QuestionRepository
	grid         sheets.API
	originIndex  int
	excluded     map[string]struct{}
	log          *zap.Logger
}

func NewMappingService(
	sheetRepo repository.SheetRepository,
	questionRepo repository.QuestionRepository,
	grid sheets.API,
	originColumn string,
	excludedTabs []string,
	log *zap.Logger,
) *MappingService {
	originIndex := sheets.ColumnIndex(originColumn)
	if originIndex < 0 {
		log.Warn("invalid origin column, falling back to F", zap.String("origin_column", originColumn))
		originIndex = sheets.ColumnIndex("F")
	}
	excluded := make(map[string]struct{}, len(excludedTabs))
	for _, tab := range excludedTabs {
		excluded[strings.ToLower(strings.TrimSpace(tab))] = struct{}{}
	}
	return &MappingService{
		sheetRepo:    sheetRepo,
		questionRepo: questionRepo,
		grid:         grid,
		originIndex:  originIndex,
		excluded:     excluded,
		log:          log,
	}
}

// TrackSheet registers a spreadsheet for synchronization.
func (s *MappingService) TrackSheet(ctx context.Context, sheetID, name string) (*model.TrackedSheet, error) {
	if sheetID == "" {
		return nil, common.Errorf("sheet_id is required: %w", common.ErrValidation)
	}
	sheet := &model.TrackedSheet{
		ID:        uuid.NewString(),
		SheetID:   sheetID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sheetRepo.Create(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// UntrackSheet removes a spreadsheet from tracking. Question records
// already synchronized from it are kept until manually purged.
func (s *MappingService) UntrackSheet(ctx context.Context, sheetID string) error {
	return s.sheetRepo.Delete(ctx, sheetID)
}

func (s *MappingService) ListSheets(ctx context.Context) ([]model.TrackedSheet, error) {
	return s.sheetRepo.List(ctx)
}

// SyncAll synchronizes every tracked sheet sequentially. A failing sheet
// is logged and skipped; it never aborts its siblings.
func (s *MappingService) SyncAll(ctx context.Context) error {
	tracked, err := s.sheetRepo.List(ctx)
	if err != nil {
		return common.Errorf("listing tracked sheets: %w", err)
	}
	s.log.Info("synchronizing tracked sheets", zap.Int("count", len(tracked)))

	for _, sheet := range tracked {
		if err := s.SyncSheet(ctx, sheet.SheetID); err != nil {
			s.log.Error("sheet synchronization failed",
				zap.String("sheet_id", sheet.SheetID), zap.Error(err))
		}
	}
	return nil
}

// SyncSheet synchronizes one spreadsheet: every tab outside the
// exclusion set is scanned and its roster slots upserted. A failing tab
// is logged and skipped. The operation is idempotent; rerunning it on an
// unchanged sheet only refreshes last-seen timestamps.
func (s *MappingService) SyncSheet(ctx context.Context, sheetID string) error {
	tabs, err := s.grid.TabNames(ctx, sheetID)
	if err != nil {
		return common.Errorf("listing tabs of sheet %s: %w: %w", sheetID, common.ErrUpstream, err)
	}

	for _, tab := range tabs {
		if _, skip := s.excluded[strings.ToLower(tab)]; skip {
			continue
		}
		if err := s.syncTab(ctx, sheetID, tab); err != nil {
			s.log.Error("tab synchronization failed",
				zap.String("sheet_id", sheetID), zap.String("tab", tab), zap.Error(err))
		}
	}
	return nil
}

func (s *MappingService) syncTab(ctx context.Context, sheetID, tab string) error {
	rows, err := s.grid.GridCells(ctx, sheetID, tab+"!1:5")
	if err != nil {
		return common.Errorf("reading header grid: %w: %w", common.ErrUpstream, err)
	}
	if len(rows) < headerRows {
		// Not a roster tab.
		return nil
	}

	pairs := extractRosterPairs(rows[3], rows[4], s.originIndex)
	now := time.Now().UTC()
	for _, p := range pairs {
		q := &model.Question{
			ID:         uuid.NewString(),
			SheetID:    sheetID,
			TabName:    tab,
			LinkCol:    p.LinkCol,
			TimeCol:    p.TimeCol,
			Title:      p.Title,
			Platform:   p.Platform,
			ProblemURL: p.ProblemURL,
			LastSeen:   now,
		}
		if err := s.questionRepo.Upsert(ctx, q); err != nil {
			return common.Errorf("upserting slot %s!%s: %w", tab, p.LinkCol, err)
		}
	}

	s.log.Debug("tab synchronized",
		zap.String("sheet_id", sheetID), zap.String("tab", tab), zap.Int("slots", len(pairs)))
	return nil
}

type rosterPair struct {
	LinkCol    string
	TimeCol    string
	Title      string
	Platform   string
	ProblemURL string
}

// extractRosterPairs walks the header columns in (link, time) pairs from
// the origin. An empty title cell terminates the scan for the tab; it
// does not skip a slot and continue.
func extractRosterPairs(platformRow, titleRow []sheets.Cell, origin int) []rosterPair {
	var pairs []rosterPair
	for col := origin; col < len(titleRow); col += 2 {
		title := titleRow[col].Text()
		if title == "" {
			break
		}

		platform := ""
		if col < len(platformRow) {
			platform = strings.ToLower(platformRow[col].Text())
		}

		pairs = append(pairs, rosterPair{
			LinkCol:    sheets.ColumnLetter(col),
			TimeCol:    sheets.ColumnLetter(col + 1),
			Title:      title,
			Platform:   platform,
			ProblemURL: titleRow[col].LinkTarget(),
		})
	}
	return pairs
}
