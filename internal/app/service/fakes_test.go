package service

import (
	"context"
	"fmt"
	"strings"

	"codetrack/internal/common"
	"codetrack/internal/domain/model"
	"codetrack/internal/platform/sheets"
)

// Fakes implementing the repository and platform interfaces, so every
// test wires its own set of sheets and records.

type fakeQuestionRepo struct {
	questions []model.Question
	listErr   error
	upsertErr error
	upserts   int
}

func (f *fakeQuestionRepo) Upsert(_ context.Context, q *model.Question) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	for i := range f.questions {
		existing := &f.questions[i]
		if existing.SheetID == q.SheetID && existing.TabName == q.TabName && existing.LinkCol == q.LinkCol {
			id := existing.ID
			*existing = *q
			existing.ID = id
			return nil
		}
	}
	f.questions = append(f.questions, *q)
	return nil
}

func (f *fakeQuestionRepo) ListBySheet(_ context.Context, sheetID string) ([]model.Question, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Question
	for _, q := range f.questions {
		if q.SheetID == sheetID {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeSheetRepo struct {
	sheets []model.TrackedSheet
}

func (f *fakeSheetRepo) Create(_ context.Context, s *model.TrackedSheet) error {
	for _, existing := range f.sheets {
		if existing.SheetID == s.SheetID {
			return fmt.Errorf("sheet %s is already tracked: %w", s.SheetID, common.ErrConflict)
		}
	}
	f.sheets = append(f.sheets, *s)
	return nil
}

func (f *fakeSheetRepo) Delete(_ context.Context, sheetID string) error {
	for i, s := range f.sheets {
		if s.SheetID == sheetID {
			f.sheets = append(f.sheets[:i], f.sheets[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeSheetRepo) List(_ context.Context) ([]model.TrackedSheet, error) {
	return append([]model.TrackedSheet(nil), f.sheets...), nil
}

func (f *fakeSheetRepo) FindBySheetID(_ context.Context, sheetID string) (*model.TrackedSheet, error) {
	for i := range f.sheets {
		if f.sheets[i].SheetID == sheetID {
			return &f.sheets[i], nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeSheetRepo) FindByName(_ context.Context, name string) (*model.TrackedSheet, error) {
	for i := range f.sheets {
		if strings.EqualFold(f.sheets[i].Name, name) {
			return &f.sheets[i], nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeStudentRepo struct {
	students     map[string]*model.Student // keyed by lowercased email
	rowUpdates   []int
	rowUpdateErr error
	lastUpsert   *model.Student
}

func newFakeStudentRepo(students ...*model.Student) *fakeStudentRepo {
	f := &fakeStudentRepo{students: make(map[string]*model.Student)}
	for _, s := range students {
		f.students[strings.ToLower(s.Email)] = s
	}
	return f
}

func (f *fakeStudentRepo) Upsert(_ context.Context, s *model.Student) error {
	key := strings.ToLower(s.Email)
	if existing, ok := f.students[key]; ok {
		s.ID = existing.ID
	}
	cp := *s
	f.students[key] = &cp
	f.lastUpsert = &cp
	return nil
}

func (f *fakeStudentRepo) FindByEmail(_ context.Context, email string) (*model.Student, error) {
	if s, ok := f.students[strings.ToLower(email)]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, fmt.Errorf("student %s: %w", email, common.ErrNotFound)
}

func (f *fakeStudentRepo) UpdateRowNumber(_ context.Context, id string, rowNumber int) error {
	if f.rowUpdateErr != nil {
		return f.rowUpdateErr
	}
	f.rowUpdates = append(f.rowUpdates, rowNumber)
	for _, s := range f.students {
		if s.ID == id {
			s.RowNumber = rowNumber
		}
	}
	return nil
}

type fakeSubmissionRepo struct {
	created   []model.Submission
	createErr error
}

func (f *fakeSubmissionRepo) Create(_ context.Context, sub *model.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *sub)
	return nil
}

type cellUpdate struct {
	SheetID string
	Range   string
	Value   interface{}
}

// fakeGrid implements sheets.API from in-memory fixtures. Ranges are
// matched literally against the keys the services build.
type fakeGrid struct {
	tabs      map[string][]string        // sheetID -> tab names
	tabsErr   map[string]error           // keyed by sheetID
	values    map[string][][]string      // sheetID + "|" + range -> rows
	valuesErr map[string]error           // keyed by range
	grids     map[string][][]sheets.Cell // sheetID + "|" + range -> rows
	gridErr   map[string]error           // keyed by range
	updates   []cellUpdate
	updateErr map[string]error // keyed by range
}

func newFakeGrid() *fakeGrid {
	return &fakeGrid{
		tabs:      map[string][]string{},
		tabsErr:   map[string]error{},
		values:    map[string][][]string{},
		valuesErr: map[string]error{},
		grids:     map[string][][]sheets.Cell{},
		gridErr:   map[string]error{},
		updateErr: map[string]error{},
	}
}

func (f *fakeGrid) TabNames(_ context.Context, spreadsheetID string) ([]string, error) {
	if err := f.tabsErr[spreadsheetID]; err != nil {
		return nil, err
	}
	return f.tabs[spreadsheetID], nil
}

func (f *fakeGrid) Values(_ context.Context, spreadsheetID, readRange string) ([][]string, error) {
	if err := f.valuesErr[readRange]; err != nil {
		return nil, err
	}
	return f.values[spreadsheetID+"|"+readRange], nil
}

func (f *fakeGrid) GridCells(_ context.Context, spreadsheetID, readRange string) ([][]sheets.Cell, error) {
	if err := f.gridErr[readRange]; err != nil {
		return nil, err
	}
	return f.grids[spreadsheetID+"|"+readRange], nil
}

func (f *fakeGrid) UpdateCell(_ context.Context, spreadsheetID, cellRange string, value interface{}) error {
	if err := f.updateErr[cellRange]; err != nil {
		return err
	}
	f.updates = append(f.updates, cellUpdate{SheetID: spreadsheetID, Range: cellRange, Value: value})
	return nil
}

type storeCall struct {
	Token, Owner, Repo, Path, Content, Message string
}

type fakeStore struct {
	calls     []storeCall
	commitErr error
}

func (f *fakeStore) CommitFile(_ context.Context, token, owner, repo, path, content, message string) (string, error) {
	f.calls = append(f.calls, storeCall{token, owner, repo, path, content, message})
	if f.commitErr != nil {
		return "", f.commitErr
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/main/%s", owner, repo, path), nil
}
