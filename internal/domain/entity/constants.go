package entity

// Status constants for Participant. These are part of the wire contract
// between step authoring and the engine and must stay stable.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "INPROGRESS"
	StatusRejected   = "REJECTED"
	StatusPrinted    = "PRINTED"
	StatusNotified   = "NOTIFIED"
	StatusBypassed   = "BYPASSED"
	StatusArchived   = "ARCHIVED"
)

// Result constants for Approval
const (
	ResultSuccess = "SUCCESS"
	ResultFailure = "FAILURE"
)

// Designated step names referenced by the engine
const (
	StepNameRequestReceived = "Request Received"
	StepNameMofaPrint       = "MOFA Print"
)

// Validator role names. A second-stage rejection rewinds to the first-stage
// validator's step; any other rejection routes back to the start step.
const (
	RoleFirstValidator  = "First Validator"
	RoleSecondValidator = "Second Validator"
	RoleAdmin           = "Admin"
)
