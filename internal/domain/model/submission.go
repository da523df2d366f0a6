package model

import "time"

// Submission is an append-only audit record of one accepted submission.
// It is never mutated after creation.
type Submission struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	QuestionID  string    `json:"question_id"`
	Attempt     int       `json:"attempt"`
	CodeURL     string    `json:"code_url"`
	TimeTaken   float64   `json:"time_taken"` // minutes
	SubmittedAt time.Time `json:"submitted_at"`
}
