package githubstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContents struct {
	sha       string // current version marker, "" = file absent
	getErr    error
	putErr    []error // consumed per Put call
	putCalls  []string
	lastToken string
}

func (f *fakeContents) GetSHA(_ context.Context, _, _, _ string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	if f.sha == "" {
		return "", errFileNotFound
	}
	return f.sha, nil
}

func (f *fakeContents) Put(_ context.Context, _, _, _, _, _, sha string) error {
	f.putCalls = append(f.putCalls, sha)
	if len(f.putErr) > 0 {
		err := f.putErr[0]
		f.putErr = f.putErr[1:]
		return err
	}
	return nil
}

func newTestClient(fake *fakeContents) *Client {
	c := NewClient("main")
	c.api = func(token string) contentsAPI {
		fake.lastToken = token
		return fake
	}
	return c
}

func TestCommitFile_NewFileOmitsSHA(t *testing.T) {
	fake := &fakeContents{}
	c := newTestClient(fake)

	url, err := c.CommitFile(context.Background(), "tok", "alice", "solutions", "leetcode/two-sum_trial1.go", "code", "msg")
	require.NoError(t, err)

	assert.Equal(t, "https://raw.githubusercontent.com/alice/solutions/main/leetcode/two-sum_trial1.go", url)
	require.Len(t, fake.putCalls, 1)
	assert.Equal(t, "", fake.putCalls[0], "create must not carry a version marker")
	assert.Equal(t, "tok", fake.lastToken)
}

func TestCommitFile_ExistingFileCarriesSHA(t *testing.T) {
	fake := &fakeContents{sha: "abc123"}
	c := newTestClient(fake)

	_, err := c.CommitFile(context.Background(), "tok", "alice", "solutions", "p", "code", "msg")
	require.NoError(t, err)

	require.Len(t, fake.putCalls, 1)
	assert.Equal(t, "abc123", fake.putCalls[0])
}

func TestCommitFile_TransientFailureRetried(t *testing.T) {
	fake := &fakeContents{putErr: []error{errors.New("502 from upstream")}}
	c := newTestClient(fake)
	c.shortBackoffForTest()

	url, err := c.CommitFile(context.Background(), "tok", "alice", "solutions", "p", "code", "msg")
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Len(t, fake.putCalls, 2)
}

func TestCommitFile_NonNotFoundReadErrorSurfaces(t *testing.T) {
	fake := &fakeContents{getErr: errors.New("403 forbidden")}
	c := newTestClient(fake)
	c.shortBackoffForTest()

	_, err := c.CommitFile(context.Background(), "tok", "alice", "solutions", "p", "code", "msg")
	require.Error(t, err)
	assert.Empty(t, fake.putCalls, "write must not happen when the read fails for a reason other than absence")
}

func TestCommitFile_ExhaustsRetryBudget(t *testing.T) {
	boom := errors.New("boom")
	fake := &fakeContents{putErr: []error{boom, boom, boom}}
	c := newTestClient(fake)
	c.shortBackoffForTest()

	_, err := c.CommitFile(context.Background(), "tok", "alice", "solutions", "p", "code", "msg")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, fake.putCalls, 3)
}

func TestRawURL(t *testing.T) {
	c := NewClient("develop")
	assert.Equal(t,
		"https://raw.githubusercontent.com/o/r/develop/a/b.py",
		c.RawURL("o", "r", "a/b.py"))
}

func TestNewClient_DefaultBranch(t *testing.T) {
	assert.Equal(t, "https://raw.githubusercontent.com/o/r/main/p", NewClient("").RawURL("o", "r", "p"))
}

// shortBackoffForTest keeps retry sleeps out of the test runtime.
func (c *Client) shortBackoffForTest() { c.baseDelay = time.Millisecond }
