package model

import "time"

// Question is one roster slot on a tracked sheet. The natural key is
// (SheetID, TabName, LinkCol); re-synchronization overwrites the rest.
type Question struct {
	ID         string    `json:"id"`
	SheetID    string    `json:"sheet_id"`
	TabName    string    `json:"tab_name"`
	LinkCol    string    `json:"link_col"` // column letter, e.g. "F" or "AA"
	TimeCol    string    `json:"time_col"`
	Title      string    `json:"title"`
	Platform   string    `json:"platform,omitempty"`    // lowercased, may be empty
	ProblemURL string    `json:"problem_url,omitempty"` // canonical URL, may be empty
	LastSeen   time.Time `json:"last_seen"`
}
