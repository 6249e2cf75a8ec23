package workflow

import "github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"

// Status represents a participant's position in the accreditation lifecycle
type Status string

const (
	StatusPending    Status = entity.StatusPending
	StatusInProgress Status = entity.StatusInProgress
	StatusRejected   Status = entity.StatusRejected
	StatusPrinted    Status = entity.StatusPrinted
	StatusNotified   Status = entity.StatusNotified
	StatusBypassed   Status = entity.StatusBypassed
	StatusArchived   Status = entity.StatusArchived
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusRejected:   true,
	StatusPrinted:    true,
	StatusNotified:   true,
	StatusBypassed:   true,
	StatusArchived:   true,
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a known lifecycle status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if no action is specified to leave the status.
// PRINTED, NOTIFIED and BYPASSED are stable but not terminal: ARCHIVE still
// applies to them.
func (s Status) IsTerminal() bool {
	return s == StatusArchived
}
