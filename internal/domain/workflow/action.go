package workflow

import "github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"

// Action is the engine's sole external verb: one decision taken against a
// participant at its current step.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionPrint   Action = "PRINT"
	ActionNotify  Action = "NOTIFY"
	ActionArchive Action = "ARCHIVE"
	ActionBypass  Action = "BYPASS"
)

var validActions = map[Action]bool{
	ActionApprove: true,
	ActionReject:  true,
	ActionPrint:   true,
	ActionNotify:  true,
	ActionArchive: true,
	ActionBypass:  true,
}

// defaultRemarks are the canonical per-action remarks used when the caller
// supplies none.
var defaultRemarks = map[Action]string{
	ActionApprove: "Approved successfully.",
	ActionReject:  "Rejected due to compliance issues.",
	ActionPrint:   "Badge sent to printing.",
	ActionNotify:  "Participant notified.",
	ActionArchive: "Request archived.",
	ActionBypass:  "Routed to fast-track printing.",
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// IsValid returns true if the action is a known engine verb
func (a Action) IsValid() bool {
	return validActions[a]
}

// Result returns the audit result recorded for the action: FAILURE for
// REJECT, SUCCESS for everything else.
func (a Action) Result() string {
	if a == ActionReject {
		return entity.ResultFailure
	}
	return entity.ResultSuccess
}

// DefaultRemarks returns the canonical remarks for the action
func (a Action) DefaultRemarks() string {
	return defaultRemarks[a]
}
