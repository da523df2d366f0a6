package model

import "time"

// Student is one participant, keyed by email. RowNumber is an advisory
// cache of the student's 1-based row in their sheet; it is verified
// against the live sheet before every use and repaired when stale.
type Student struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	GithubHandle string    `json:"github_handle,omitempty"`
	SheetID      string    `json:"sheet_id"`
	RowNumber    int       `json:"row_number,omitempty"` // 0 = unknown

	// Encrypted remote-write credential (AES-GCM triple), hex-encoded.
	TokenCiphertext string `json:"-"`
	TokenIV         string `json:"-"`
	TokenAuthTag    string `json:"-"`

	GithubUsername string    `json:"github_username,omitempty"`
	RepoName       string    `json:"repo_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasToken reports whether an encrypted credential is stored.
func (s *Student) HasToken() bool {
	return s.TokenCiphertext != "" && s.TokenIV != "" && s.TokenAuthTag != ""
}
