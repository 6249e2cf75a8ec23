package entity

import "time"

// Workflow is an authored chain of approval steps scoped to a tenant, an
// event and a participant type. At most one workflow exists per
// (tenant, event, participant type); the engine only ever reads it.
type Workflow struct {
	ID                int64     `json:"id"`
	TenantID          int64     `json:"tenant_id"`
	EventID           int64     `json:"event_id"`
	ParticipantTypeID int64     `json:"participant_type_id"`
	Name              string    `json:"name"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Step is a node in a workflow's chain. RoleName is the only role permitted
// to act on a participant currently at this step. NextStepID forms a
// singly-linked forward chain; nil marks the chain's tail.
type Step struct {
	ID         int64     `json:"id"`
	WorkflowID int64     `json:"workflow_id"`
	Name       string    `json:"name"`
	RoleName   string    `json:"role_name"`
	NextStepID *int64    `json:"next_step_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsTerminal reports whether the step has no forward hop.
func (s *Step) IsTerminal() bool {
	return s.NextStepID == nil
}
