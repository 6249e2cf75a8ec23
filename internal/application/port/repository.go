package port

import (
	"context"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"
)

// WorkflowRepository defines read operations for Workflow. Workflows are
// authored by administrators; the engine only reads them.
type WorkflowRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Workflow, error)
	GetByScope(ctx context.Context, tenantID, eventID, participantTypeID int64) (*entity.Workflow, error)
}

// StepRepository defines read operations for Step
type StepRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Step, error)
	GetByWorkflowID(ctx context.Context, workflowID int64) ([]*entity.Step, error)
}

// ParticipantRepository defines persistence operations for Participant
type ParticipantRepository interface {
	// GetWithStep loads a participant together with its current step.
	// Returns (nil, nil) when the participant does not exist.
	GetWithStep(ctx context.Context, id int64) (*entity.Participant, error)

	// UpdateStepStatus conditionally moves the participant: the write only
	// applies while current_step_id still equals expectedStepID. Returns
	// workflow.ErrConflict when a concurrent transition won the race.
	UpdateStepStatus(ctx context.Context, id, stepID int64, status string, expectedStepID int64) error
}

// ApprovalRepository defines persistence operations for the append-only
// audit trail. There is deliberately no update or delete.
type ApprovalRepository interface {
	Create(ctx context.Context, approval *entity.Approval) error
	GetByParticipantID(ctx context.Context, participantID int64) ([]*entity.Approval, error)
}

// UserRepository defines read operations for acting users
type UserRepository interface {
	// GetWithRoles loads a user and its role set. Returns (nil, nil) when
	// the user does not exist.
	GetWithRoles(ctx context.Context, id int64) (*entity.User, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
