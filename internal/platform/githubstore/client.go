package githubstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"codetrack/internal/common"

	"github.com/google/go-github/v66/github"
)

const (
	commitAttempts  = 3
	commitBaseDelay = time.Second
)

// errFileNotFound marks the expected state for first-time writes. Only
// this error class is swallowed when reading the current version.
var errFileNotFound = errors.New("githubstore: file not found")

// contentsAPI is the slice of the GitHub contents API the client needs.
// The indirection exists so tests can substitute a fake per-test.
type contentsAPI interface {
	// GetSHA returns the current version marker of the file at path, or
	// errFileNotFound if the file does not exist yet.
	GetSHA(ctx context.Context, owner, repo, path string) (string, error)
	// Put creates or updates the file. sha must be empty for a create
	// and the previously-read marker for an update.
	Put(ctx context.Context, owner, repo, path, content, message, sha string) error
}

// Client commits solution artifacts to students' repositories. Each
// commit authenticates with the submitting student's own token.
type Client struct {
	branch    string
	baseDelay time.Duration
	api       func(token string) contentsAPI
}

func NewClient(branch string) *Client {
	if branch == "" {
		branch = "main"
	}
	return &Client{
		branch:    branch,
		baseDelay: commitBaseDelay,
		api: func(token string) contentsAPI {
			gh := github.NewClient(nil).WithAuthToken(token)
			return &ghContents{repos: gh.Repositories, branch: branch}
		},
	}
}

// CommitFile writes content to path in the student's repository,
// creating the file or updating it in place, and returns the durable raw
// content URL. The whole read-marker-then-write operation is retried
// with exponential backoff.
func (c *Client) CommitFile(ctx context.Context, token, owner, repo, path, content, message string) (string, error) {
	api := c.api(token)

	return common.RetryWithBackoff(ctx, commitAttempts, c.baseDelay, func() (string, error) {
		sha, err := api.GetSHA(ctx, owner, repo, path)
		if err != nil && !errors.Is(err, errFileNotFound) {
			return "", common.Errorf("reading %s/%s/%s: %w", owner, repo, path, err)
		}

		if err := api.Put(ctx, owner, repo, path, content, message, sha); err != nil {
			return "", common.Errorf("committing %s/%s/%s: %w", owner, repo, path, err)
		}

		return c.RawURL(owner, repo, path), nil
	})
}

// RawURL is the deterministic public URL of a committed file.
func (c *Client) RawURL(owner, repo, path string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", owner, repo, c.branch, path)
}

type ghContents struct {
	repos  *github.RepositoriesService
	branch string
}

func (g *ghContents) GetSHA(ctx context.Context, owner, repo, path string) (string, error) {
	file, _, resp, err := g.repos.GetContents(ctx, owner, repo, path,
		&github.RepositoryContentGetOptions{Ref: g.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", errFileNotFound
		}
		return "", err
	}
	if file == nil {
		// Path resolved to a directory listing; treat as absent.
		return "", errFileNotFound
	}
	return file.GetSHA(), nil
}

func (g *ghContents) Put(ctx context.Context, owner, repo, path, content, message, sha string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(content),
		Branch:  github.String(g.branch),
	}
	if sha == "" {
		_, _, err := g.repos.CreateFile(ctx, owner, repo, path, opts)
		return err
	}
	opts.SHA = github.String(sha)
	_, _, err := g.repos.UpdateFile(ctx, owner, repo, path, opts)
	return err
}
