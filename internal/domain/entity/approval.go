package entity

import "time"

// Approval is one immutable audit entry: who acted, on which step the
// participant stood at the time, with what result and remarks. Rows are
// append-only; the engine never updates or deletes them.
type Approval struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	StepID        int64     `json:"step_id"`
	UserID        int64     `json:"user_id"`
	Result        string    `json:"result"`
	Remarks       string    `json:"remarks"`
	CreatedAt     time.Time `json:"created_at"`
}
