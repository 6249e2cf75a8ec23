package service

import (
	"context"
	"fmt"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/application/port"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/workflow"
)

// AuditService exposes the read surface the admin UI consumes: a
// participant with its current step, its decision trail, and a workflow's
// resolved chain.
type AuditService interface {
	GetParticipant(ctx context.Context, id int64) (*entity.Participant, error)
	GetTrail(ctx context.Context, participantID int64) ([]*entity.Approval, error)
	GetWorkflowSteps(ctx context.Context, workflowID int64) ([]*entity.Step, error)
	ResolveWorkflow(ctx context.Context, tenantID, eventID, participantTypeID int64) (*entity.Workflow, error)
}

type auditServiceImpl struct {
	participantRepo port.ParticipantRepository
	approvalRepo    port.ApprovalRepository
	stepRepo        port.StepRepository
	workflowRepo    port.WorkflowRepository
	logger          Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(
	participantRepo port.ParticipantRepository,
	approvalRepo port.ApprovalRepository,
	stepRepo port.StepRepository,
	workflowRepo port.WorkflowRepository,
	logger Logger,
) AuditService {
	return &auditServiceImpl{
		participantRepo: participantRepo,
		approvalRepo:    approvalRepo,
		stepRepo:        stepRepo,
		workflowRepo:    workflowRepo,
		logger:          logger,
	}
}

// GetParticipant loads a participant with its current step
func (s *auditServiceImpl) GetParticipant(ctx context.Context, id int64) (*entity.Participant, error) {
	p, err := s.participantRepo.GetWithStep(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get participant", "error", err, "id", id)
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: participant %d", workflow.ErrNotFound, id)
	}
	return p, nil
}

// GetTrail returns the participant's decisions ordered oldest first
func (s *auditServiceImpl) GetTrail(ctx context.Context, participantID int64) ([]*entity.Approval, error) {
	approvals, err := s.approvalRepo.GetByParticipantID(ctx, participantID)
	if err != nil {
		s.logger.Error("Failed to get approval trail", "error", err, "participant_id", participantID)
		return nil, err
	}
	return approvals, nil
}

// GetWorkflowSteps returns a workflow's steps, validated as a chain so a
// malformed authoring state surfaces here rather than at transition time
func (s *auditServiceImpl) GetWorkflowSteps(ctx context.Context, workflowID int64) ([]*entity.Step, error) {
	w, err := s.workflowRepo.GetByID(ctx, workflowID)
	if err != nil {
		s.logger.Error("Failed to get workflow", "error", err, "workflow_id", workflowID)
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: workflow %d", workflow.ErrNotFound, workflowID)
	}

	steps, err := s.stepRepo.GetByWorkflowID(ctx, workflowID)
	if err != nil {
		s.logger.Error("Failed to get workflow steps", "error", err, "workflow_id", workflowID)
		return nil, err
	}
	if _, err := workflow.NewChain(workflowID, steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// ResolveWorkflow returns the single workflow bound to a tenant, event and
// participant type
func (s *auditServiceImpl) ResolveWorkflow(ctx context.Context, tenantID, eventID, participantTypeID int64) (*entity.Workflow, error) {
	w, err := s.workflowRepo.GetByScope(ctx, tenantID, eventID, participantTypeID)
	if err != nil {
		s.logger.Error("Failed to resolve workflow",
			"error", err, "tenant_id", tenantID, "event_id", eventID, "participant_type_id", participantTypeID)
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: no workflow for tenant %d, event %d, participant type %d",
			workflow.ErrNotFound, tenantID, eventID, participantTypeID)
	}
	return w, nil
}
