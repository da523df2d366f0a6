package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codetrack/internal/common"
	"codetrack/internal/domain/model"
	"codetrack/internal/domain/repository"
	"codetrack/internal/platform/sheets"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// ContentStore commits solution artifacts to a student's remote
// repository and returns the durable content URL.
type ContentStore interface {
	CommitFile(ctx context.Context, token, owner, repo, path, content, message string) (string, error)
}

var languageExtensions = map[string]string{
	"python":     "py",
	"java":       "java",
	"c++":        "cpp",
	"cpp":        "cpp",
	"c":          "c",
	"go":         "go",
	"typescript": "ts",
	"javascript": "js",
}

type SubmissionService struct {
	studentService *StudentService
	matcher        *MatcherService
	store          ContentStore
	grid           sheets.API
	submissionRepo repository.SubmissionRepository
	log            *zap.Logger
}

func NewSubmissionService(
	studentService *StudentService,
	matcher *MatcherService,
	store ContentStore,
	grid sheets.API,
	submissionRepo repository.SubmissionRepository,
	log *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		studentService: studentService,
		matcher:        matcher,
		store:          store,
		grid:           grid,
		submissionRepo: submissionRepo,
		log:            log,
	}
}

type SubmitRequest struct {
	Email        string  `json:"email"`
	Platform     string  `json:"platform,omitempty"`
	ProblemTitle string  `json:"problem_title"`
	ProblemURL   string  `json:"problem_url,omitempty"`
	Code         string  `json:"code"`
	TimeTaken    float64 `json:"time_taken"` // minutes
	Trial        int     `json:"trial"`
	Language     string  `json:"language,omitempty"`
}

type SubmitResult struct {
	ArtifactURL string `json:"artifact_url"`
}

// Submit runs the full pipeline: load the student and their credential,
// match the question, resolve the student's row, commit the artifact,
// write the link and time cells, and record the submission. A failing
// stage aborts the remaining ones; nothing already done is rolled back.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := validateSubmit(&req); err != nil {
		return nil, err
	}

	student, token, err := s.studentService.LoadWithToken(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, common.Errorf("remote-write credential missing for %s, reconnect GitHub: %w",
			req.Email, common.ErrUnauthorized)
	}

	question, err := s.matcher.MatchQuestion(ctx, student.SheetID, req.ProblemTitle, req.ProblemURL, req.Platform)
	if err != nil {
		return nil, err
	}

	row, err := s.studentService.ResolveRow(ctx, student, question.TabName)
	if err != nil {
		return nil, err
	}

	path := artifactPath(req, question)
	message := fmt.Sprintf("Add solution for %s (trial %d)", req.ProblemTitle, req.Trial)

	artifactURL, err := s.store.CommitFile(ctx, token, student.GithubUsername, student.RepoName,
		path, req.Code, message)
	if err != nil {
		return nil, common.Errorf("committing artifact: %w: %w", common.ErrUpstream, err)
	}

	linkCell := fmt.Sprintf("%s!%s%d", question.TabName, question.LinkCol, row)
	linkFormula := fmt.Sprintf(`=HYPERLINK(%q, "Solution")`, artifactURL)
	if err := s.grid.UpdateCell(ctx, student.SheetID, linkCell, linkFormula); err != nil {
		return nil, &common.PartialWriteError{ArtifactURL: artifactURL, Err: err}
	}

	timeCell := fmt.Sprintf("%s!%s%d", question.TabName, question.TimeCol, row)
	if err := s.grid.UpdateCell(ctx, student.SheetID, timeCell, req.TimeTaken); err != nil {
		return nil, &common.PartialWriteError{ArtifactURL: artifactURL, Err: err}
	}

	sub := &model.Submission{
		ID:          uuid.NewString(),
		StudentID:   student.ID,
		QuestionID:  question.ID,
		Attempt:     req.Trial,
		CodeURL:     artifactURL,
		TimeTaken:   req.TimeTaken,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, common.Errorf("recording submission: %w", err)
	}

	s.log.Info("submission recorded",
		zap.String("email", student.Email),
		zap.String("question", question.Title),
		zap.Int("trial", req.Trial))
	return &SubmitResult{ArtifactURL: artifactURL}, nil
}

func validateSubmit(req *SubmitRequest) error {
	var missing []string
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(req.ProblemTitle) == "" {
		missing = append(missing, "problem_title")
	}
	if req.Code == "" {
		missing = append(missing, "code")
	}
	if len(missing) > 0 {
		return common.Errorf("missing required fields %s: %w", strings.Join(missing, ", "), common.ErrValidation)
	}
	if req.Trial <= 0 {
		req.Trial = 1
	}
	return nil
}

// artifactPath derives the deterministic repository path for a
// submission: {platform}/{title-slug}_trial{n}.{ext}.
func artifactPath(req SubmitRequest, question *model.Question) string {
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform == "" {
		platform = question.Platform
	}
	if platform == "" {
		platform = "misc"
	}

	ext, ok := languageExtensions[strings.ToLower(strings.TrimSpace(req.Language))]
	if !ok {
		ext = "js"
	}

	return fmt.Sprintf("%s/%s_trial%d.%s", platform, slug.Make(req.ProblemTitle), req.Trial, ext)
}
