package service

import (
	"context"
	"strings"

	"codetrack/internal/common"
	"codetrack/internal/domain/model"
	"codetrack/internal/domain/repository"
)

// matchThreshold is the minimum similarity percentage for a fuzzy title
// match to count.
const matchThreshold = 80

type MatcherService struct {
	questionRepo repository.QuestionRepository
}

func NewMatcherService(questionRepo repository.QuestionRepository) *MatcherService {
	return &MatcherService{questionRepo: questionRepo}
}

// MatchQuestion resolves a submission to a roster slot on the given
// sheet. URL matching is authoritative when a URL is supplied; fuzzy
// title matching is the fallback. When both the submission and a
// candidate declare a non-generic platform they must agree.
//
// Ties in the fuzzy phase go to the candidate scanned first; candidates
// are scanned in (tab, link column) order.
func (m *MatcherService) MatchQuestion(ctx context.Context, sheetID, title, problemURL, platform string) (*model.Question, error) {
	questions, err := m.questionRepo.ListBySheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	wantPlatform := normalizePlatform(platform)

	if normURL := normalizeURL(problemURL); normURL != "" {
		for i := range questions {
			q := &questions[i]
			if q.ProblemURL == "" {
				continue
			}
			if platformMismatch(wantPlatform, q.Platform) {
				continue
			}
			if normalizeURL(q.ProblemURL) == normURL {
				return q, nil
			}
		}
	}

	normTitle := strings.ToLower(strings.TrimSpace(title))
	if normTitle == "" {
		return nil, common.Errorf("question for title %q: %w", title, common.ErrNotFound)
	}

	var best *model.Question
	bestScore := 0
	for i := range questions {
		q := &questions[i]
		if q.Title == "" {
			continue
		}
		if platformMismatch(wantPlatform, q.Platform) {
			continue
		}
		score := common.SimilarityRatio(normTitle, q.Title)
		if score > bestScore && score >= matchThreshold {
			bestScore = score
			best = q
		}
	}

	if best == nil {
		return nil, common.Errorf("question for title %q: %w", title, common.ErrNotFound)
	}
	return best, nil
}

// normalizeURL strips fragment, query string and trailing slash so
// cosmetic URL variants compare equal.
func normalizeURL(rawURL string) string {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return ""
	}
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimSuffix(u, "/")
}

// normalizePlatform lowercases and drops placeholder labels that carry
// no signal.
func normalizePlatform(platform string) string {
	p := strings.ToLower(strings.TrimSpace(platform))
	if p == "unknown" || p == "generic" {
		return ""
	}
	return p
}

// platformMismatch applies the optional platform filter: it only
// excludes a candidate when both sides declare a platform and they
// differ.
func platformMismatch(want, candidate string) bool {
	if want == "" || candidate == "" {
		return false
	}
	return strings.ToLower(candidate) != want
}
