package service

import (
	"context"
	"errors"
	"testing"

	"codetrack/internal/common"
	"codetrack/internal/domain/model"
	"codetrack/internal/platform/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func titleCell(title, url string) sheets.Cell {
	return sheets.Cell{Kind: sheets.KindRich, Value: title, Hyperlink: url}
}

func plainCell(v string) sheets.Cell {
	return sheets.Cell{Kind: sheets.KindPlain, Value: v}
}

// headerGrid builds a 5-row header block whose rows 4 and 5 carry the
// given platform and title cells.
func headerGrid(platformRow, titleRow []sheets.Cell) [][]sheets.Cell {
	return [][]sheets.Cell{{}, {}, {}, platformRow, titleRow}
}

func newMappingService(sheetRepo *fakeSheetRepo, questionRepo *fakeQuestionRepo, grid *fakeGrid, origin string) *MappingService {
	return NewMappingService(sheetRepo, questionRepo, grid, origin,
		[]string{"Dashboard", "Attendance"}, zap.NewNop())
}

func TestExtractRosterPairs_EmptyTitleTerminates(t *testing.T) {
	// The empty title at index 2 ends the scan for the tab; "Two Sum"
	// two slots later is never reached.
	titleRow := []sheets.Cell{plainCell("Valid One"), plainCell(""), plainCell(""), plainCell(""), plainCell("Two Sum")}
	platformRow := []sheets.Cell{plainCell("LC")}

	pairs := extractRosterPairs(platformRow, titleRow, 0)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Valid One", pairs[0].Title)
	assert.Equal(t, "A", pairs[0].LinkCol)
	assert.Equal(t, "B", pairs[0].TimeCol)
	assert.Equal(t, "lc", pairs[0].Platform)
}

func TestExtractRosterPairs_StopsDoesNotSkip(t *testing.T) {
	// An empty title two slots in must hide the later non-empty one.
	titleRow := []sheets.Cell{plainCell("One"), plainCell(""), plainCell(""), plainCell(""), plainCell("Hidden")}
	pairs := extractRosterPairs(nil, titleRow, 0)
	require.Len(t, pairs, 1)
	assert.Equal(t, "One", pairs[0].Title)
}

func TestExtractRosterPairs_OriginAndColumns(t *testing.T) {
	titleRow := make([]sheets.Cell, 10)
	platformRow := make([]sheets.Cell, 10)
	titleRow[7] = titleCell("Two Sum", "https://leetcode.com/problems/two-sum")
	platformRow[7] = plainCell(" LeetCode ")
	titleRow[9] = titleCell("Three Sum", "")

	pairs := extractRosterPairs(platformRow, titleRow, 7) // origin column H
	require.Len(t, pairs, 2)

	assert.Equal(t, "H", pairs[0].LinkCol)
	assert.Equal(t, "I", pairs[0].TimeCol)
	assert.Equal(t, "leetcode", pairs[0].Platform)
	assert.Equal(t, "https://leetcode.com/problems/two-sum", pairs[0].ProblemURL)

	assert.Equal(t, "J", pairs[1].LinkCol)
	assert.Equal(t, "K", pairs[1].TimeCol)
	assert.Equal(t, "", pairs[1].ProblemURL)
}

func TestExtractRosterPairs_MultiLetterColumns(t *testing.T) {
	titleRow := make([]sheets.Cell, 30)
	titleRow[26] = plainCell("Far Right")
	pairs := extractRosterPairs(nil, titleRow, 26)
	require.Len(t, pairs, 1)
	assert.Equal(t, "AA", pairs[0].LinkCol)
	assert.Equal(t, "AB", pairs[0].TimeCol)
}

func TestSyncSheet_UpsertsRosterSlots(t *testing.T) {
	grid := newFakeGrid()
	grid.tabs["sh"] = []string{"Week1"}

	titleRow := make([]sheets.Cell, 8)
	platformRow := make([]sheets.Cell, 8)
	titleRow[5] = titleCell("Two Sum", "https://leetcode.com/problems/two-sum")
	platformRow[5] = plainCell("leetcode")
	grid.grids["sh|Week1!1:5"] = headerGrid(platformRow, titleRow)

	questionRepo := &fakeQuestionRepo{}
	svc := newMappingService(&fakeSheetRepo{}, questionRepo, grid, "F")

	require.NoError(t, svc.SyncSheet(context.Background(), "sh"))
	require.Len(t, questionRepo.questions, 1)

	q := questionRepo.questions[0]
	assert.Equal(t, "sh", q.SheetID)
	assert.Equal(t, "Week1", q.TabName)
	assert.Equal(t, "F", q.LinkCol)
	assert.Equal(t, "G", q.TimeCol)
	assert.Equal(t, "Two Sum", q.Title)
	assert.Equal(t, "leetcode", q.Platform)
	assert.Equal(t, "https://leetcode.com/problems/two-sum", q.ProblemURL)
}

func TestSyncSheet_SkipsExcludedTabs(t *testing.T) {
	grid := newFakeGrid()
	grid.tabs["sh"] = []string{"dashboard", "Week1"}
	grid.gridErr["dashboard!1:5"] = errors.New("should never be read")

	titleRow := make([]sheets.Cell, 6)
	titleRow[5] = plainCell("Two Sum")
	grid.grids["sh|Week1!1:5"] = headerGrid(nil, titleRow)

	questionRepo := &fakeQuestionRepo{}
	svc := newMappingService(&fakeSheetRepo{}, questionRepo, grid, "F")

	require.NoError(t, svc.SyncSheet(context.Background(), "sh"))
	assert.Len(t, questionRepo.questions, 1)
}

func TestSyncSheet_TabFailureIsolated(t *testing.T) {
	grid := newFakeGrid()
	grid.tabs["sh"] = []string{"Broken", "Week1"}
	grid.gridErr["Broken!1:5"] = errors.New("permission denied")

	titleRow := make([]sheets.Cell, 6)
	titleRow[5] = plainCell("Two Sum")
	grid.grids["sh|Week1!1:5"] = headerGrid(nil, titleRow)

	questionRepo := &fakeQuestionRepo{}
	svc := newMappingService(&fakeSheetRepo{}, questionRepo, grid, "F")

	// The broken tab must not abort its sibling.
	require.NoError(t, svc.SyncSheet(context.Background(), "sh"))
	assert.Len(t, questionRepo.questions, 1)
}

func TestSyncSheet_ShortHeaderSkipped(t *testing.T) {
	grid := newFakeGrid()
	grid.tabs["sh"] = []string{"Notes"}
	grid.grids["sh|Notes!1:5"] = [][]sheets.Cell{{plainCell("just two")}, {plainCell("rows")}}

	questionRepo := &fakeQuestionRepo{}
	svc := newMappingService(&fakeSheetRepo{}, questionRepo, grid, "F")

	require.NoError(t, svc.SyncSheet(context.Background(), "sh"))
	assert.Empty(t, questionRepo.questions)
}

func TestSyncSheet_Idempotent(t *testing.T) {
	grid := newFakeGrid()
	grid.tabs["sh"] = []string{"Week1"}

	titleRow := make([]sheets.Cell, 8)
	titleRow[5] = titleCell("Two Sum", "https://leetcode.com/problems/two-sum")
	titleRow[7] = plainCell("Three Sum")
	grid.grids["sh|Week1!1:5"] = headerGrid(nil, titleRow)

	questionRepo := &fakeQuestionRepo{}
	svc := newMappingService(&fakeSheetRepo{}, questionRepo, grid, "F")

	require.NoError(t, svc.SyncSheet(context.Background(), "sh"))
	first := append([]model.Question(nil), questionRepo.questions...)

	require.NoError(t, svc.SyncSheet(context.Background(), "sh"))
	second := questionRepo.questions

	require.Len(t, second, len(first))
	for i := range first {
		a, b := first[i], second[i]
		// Only last_seen may move between identical runs.
		b.LastSeen = a.LastSeen
		assert.Equal(t, a, b)
	}
}

func TestSyncAll_SheetFailureIsolated(t *testing.T) {
	grid := newFakeGrid()
	grid.tabs["good"] = []string{"Week1"}
	grid.tabsErr["bad"] = errors.New("404 sheet not found")

	titleRow := make([]sheets.Cell, 6)
	titleRow[5] = plainCell("Two Sum")
	grid.grids["good|Week1!1:5"] = headerGrid(nil, titleRow)

	sheetRepo := &fakeSheetRepo{sheets: []model.TrackedSheet{
		{SheetID: "bad"}, {SheetID: "good"},
	}}
	questionRepo := &fakeQuestionRepo{}
	svc := newMappingService(sheetRepo, questionRepo, grid, "F")

	require.NoError(t, svc.SyncAll(context.Background()))
	assert.Len(t, questionRepo.questions, 1)
	assert.Equal(t, "good", questionRepo.questions[0].SheetID)
}

func TestTrackSheet(t *testing.T) {
	svc := newMappingService(&fakeSheetRepo{}, &fakeQuestionRepo{}, newFakeGrid(), "F")

	sheet, err := svc.TrackSheet(context.Background(), "sh-1", "G42")
	require.NoError(t, err)
	assert.NotEmpty(t, sheet.ID)
	assert.Equal(t, "sh-1", sheet.SheetID)

	_, err = svc.TrackSheet(context.Background(), "sh-1", "dup")
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = svc.TrackSheet(context.Background(), "", "no id")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUntrackSheet(t *testing.T) {
	sheetRepo := &fakeSheetRepo{sheets: []model.TrackedSheet{{SheetID: "sh-1"}}}
	svc := newMappingService(sheetRepo, &fakeQuestionRepo{}, newFakeGrid(), "F")

	require.NoError(t, svc.UntrackSheet(context.Background(), "sh-1"))
	assert.ErrorIs(t, svc.UntrackSheet(context.Background(), "sh-1"), common.ErrNotFound)
}

// End to end through sync and match: a roster slot extracted at origin H
// is found again by the URL phase of the matcher.
func TestSyncThenMatch(t *testing.T) {
	grid := newFakeGrid()
	grid.tabs["sh"] = []string{"Week1"}

	titleRow := make([]sheets.Cell, 8)
	platformRow := make([]sheets.Cell, 8)
	titleRow[7] = titleCell("Two Sum", "https://leetcode.com/problems/two-sum")
	platformRow[7] = plainCell("leetcode")
	grid.grids["sh|Week1!1:5"] = headerGrid(platformRow, titleRow)

	questionRepo := &fakeQuestionRepo{}
	svc := newMappingService(&fakeSheetRepo{}, questionRepo, grid, "H")
	require.NoError(t, svc.SyncSheet(context.Background(), "sh"))

	require.Len(t, questionRepo.questions, 1)
	assert.Equal(t, "H", questionRepo.questions[0].LinkCol)
	assert.Equal(t, "I", questionRepo.questions[0].TimeCol)
	assert.Equal(t, "leetcode", questionRepo.questions[0].Platform)

	matcher := NewMatcherService(questionRepo)
	q, err := matcher.MatchQuestion(context.Background(), "sh", "two sum",
		"https://leetcode.com/problems/two-sum/", "leetcode")
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", q.Title)
}
