package model

import "time"

// TrackedSheet is a spreadsheet registered for roster synchronization.
type TrackedSheet struct {
	ID        string    `json:"id"`
	SheetID   string    `json:"sheet_id"` // external spreadsheet identifier, unique
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
