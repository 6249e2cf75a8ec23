package entity

import "time"

// Participant is the subject moving through a workflow. Its workflow context
// (tenant/event/participant type) is fixed at creation; only the engine
// mutates CurrentStepID and Status afterwards.
type Participant struct {
	ID                int64     `json:"id"`
	TenantID          int64     `json:"tenant_id"`
	EventID           int64     `json:"event_id"`
	ParticipantTypeID int64     `json:"participant_type_id"`
	WorkflowID        int64     `json:"workflow_id"`
	CurrentStepID     int64     `json:"current_step_id"`
	Status            string    `json:"status"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// CurrentStep is populated by ParticipantRepository.GetWithStep.
	CurrentStep *Step `json:"current_step,omitempty"`
}
