package service

import (
	"context"
	"fmt"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/application/port"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Notifier dispatches best-effort notifications on terminal outcomes
type Notifier interface {
	NotifyRejection(participant *entity.Participant, remarks string)
	NotifyArchival(participant *entity.Participant, remarks string)
}

// ProcessRequest carries one decision against a participant
type ProcessRequest struct {
	ParticipantID int64
	ActorID       int64
	Action        workflow.Action
	Remarks       string
}

// ProcessResult reports where the participant ended up. Moved is false when
// the decision was recorded but the participant stayed in place (a decision
// at the chain's tail).
type ProcessResult struct {
	ParticipantID int64           `json:"participant_id"`
	StepID        int64           `json:"step_id"`
	StepName      string          `json:"step_name"`
	Status        workflow.Status `json:"status"`
	Moved         bool            `json:"moved"`
}

// Engine advances participants through their accreditation workflow
type Engine interface {
	// Process applies one action to a participant: it authorizes the actor,
	// appends the audit entry, computes and persists the transition, and
	// triggers at most one notification after commit.
	Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error)
}

type engineImpl struct {
	participantRepo port.ParticipantRepository
	stepRepo        port.StepRepository
	approvalRepo    port.ApprovalRepository
	userRepo        port.UserRepository
	txManager       port.TransactionManager
	notifier        Notifier
	logger          Logger
}

// NewEngine creates a new workflow engine
func NewEngine(
	participantRepo port.ParticipantRepository,
	stepRepo port.StepRepository,
	approvalRepo port.ApprovalRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	notifier Notifier,
	logger Logger,
) Engine {
	return &engineImpl{
		participantRepo: participantRepo,
		stepRepo:        stepRepo,
		approvalRepo:    approvalRepo,
		userRepo:        userRepo,
		txManager:       txManager,
		notifier:        notifier,
		logger:          logger,
	}
}

// transition is the computed outcome of one action
type transition struct {
	step   *entity.Step
	status workflow.Status
	moved  bool
	notify func(p *entity.Participant, remarks string)
}

// Process implements Engine
func (e *engineImpl) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if !req.Action.IsValid() {
		return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidAction, req.Action)
	}

	remarks := req.Remarks
	if remarks == "" {
		remarks = req.Action.DefaultRemarks()
	}

	var (
		result *ProcessResult
		trans  transition
		p      *entity.Participant
	)

	// The audit insert and the conditional participant update share one
	// transaction: a conflicting concurrent call rolls back both, so the
	// trail never records a decision that was half-applied.
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		p, err = e.participantRepo.GetWithStep(txCtx, req.ParticipantID)
		if err != nil {
			return fmt.Errorf("load participant: %w", err)
		}
		if p == nil || p.CurrentStep == nil {
			return fmt.Errorf("%w: participant %d", workflow.ErrNotFound, req.ParticipantID)
		}

		actor, err := e.userRepo.GetWithRoles(txCtx, req.ActorID)
		if err != nil {
			return fmt.Errorf("load acting user: %w", err)
		}
		if actor == nil {
			return fmt.Errorf("%w: user %d", workflow.ErrNotFound, req.ActorID)
		}

		steps, err := e.stepRepo.GetByWorkflowID(txCtx, p.WorkflowID)
		if err != nil {
			return fmt.Errorf("load workflow steps: %w", err)
		}
		chain, err := workflow.NewChain(p.WorkflowID, steps)
		if err != nil {
			return err
		}

		if err := authorize(actor, p.CurrentStep, req.Action); err != nil {
			return err
		}

		approval := &entity.Approval{
			ParticipantID: p.ID,
			StepID:        p.CurrentStepID,
			UserID:        actor.ID,
			Result:        req.Action.Result(),
			Remarks:       remarks,
		}
		if err := e.approvalRepo.Create(txCtx, approval); err != nil {
			return fmt.Errorf("record approval: %w", err)
		}

		trans, err = e.computeTransition(chain, p, req.Action)
		if err != nil {
			return err
		}

		if err := e.participantRepo.UpdateStepStatus(txCtx, p.ID, trans.step.ID,
			trans.status.String(), p.CurrentStepID); err != nil {
			return fmt.Errorf("persist transition: %w", err)
		}

		result = &ProcessResult{
			ParticipantID: p.ID,
			StepID:        trans.step.ID,
			StepName:      trans.step.Name,
			Status:        trans.status,
			Moved:         trans.moved,
		}
		return nil
	})
	if err != nil {
		e.logger.Error("Failed to process action",
			"error", err,
			"participant_id", req.ParticipantID,
			"actor_id", req.ActorID,
			"action", req.Action.String(),
		)
		return nil, err
	}

	// Fire-and-forget, after commit only. The notifier owns its own
	// goroutine and timeout; failures are logged there, never returned.
	if trans.notify != nil {
		trans.notify(p, remarks)
	}

	e.logger.Info("Action processed",
		"participant_id", p.ID,
		"actor_id", req.ActorID,
		"action", req.Action.String(),
		"step", result.StepName,
		"status", result.Status.String(),
		"moved", result.Moved,
	)
	return result, nil
}

// computeTransition dispatches on the action and resolves the target step
// and status through the chain's typed handles.
func (e *engineImpl) computeTransition(chain *workflow.Chain, p *entity.Participant, action workflow.Action) (transition, error) {
	current := p.CurrentStep

	switch action {
	case workflow.ActionApprove:
		return e.advance(chain, p, workflow.StatusInProgress)

	case workflow.ActionPrint:
		return e.advance(chain, p, workflow.StatusPrinted)

	case workflow.ActionNotify:
		return e.advance(chain, p, workflow.StatusNotified)

	case workflow.ActionReject:
		target, status, err := chain.RejectTarget(current)
		if err != nil {
			return transition{}, err
		}
		t := transition{step: target, status: status, moved: true}
		// The rewind keeps the participant in progress and stays quiet; only
		// a terminal rejection notifies.
		if status == workflow.StatusRejected {
			t.notify = e.notifier.NotifyRejection
		}
		return t, nil

	case workflow.ActionArchive:
		return transition{
			step:   current,
			status: workflow.StatusArchived,
			moved:  false,
			notify: e.notifier.NotifyArchival,
		}, nil

	case workflow.ActionBypass:
		target, err := chain.FastTrack()
		if err != nil {
			return transition{}, err
		}
		return transition{step: target, status: workflow.StatusBypassed, moved: true}, nil
	}

	return transition{}, fmt.Errorf("%w: %q", workflow.ErrInvalidAction, action)
}

// advance moves the participant one hop forward, or records a stay-in-place
// decision at the chain's tail.
func (e *engineImpl) advance(chain *workflow.Chain, p *entity.Participant, status workflow.Status) (transition, error) {
	next, ok := chain.Next(p.CurrentStep)
	if !ok {
		return transition{step: p.CurrentStep, status: workflow.Status(p.Status), moved: false}, nil
	}
	return transition{step: next, status: status, moved: true}, nil
}

// authorize re-verifies role membership inside the engine. The edge already
// gates by role, but the engine is the last writer and checks again:
// step-acting verbs require the current step's role, administrative verbs
// require the admin role.
func authorize(actor *entity.User, current *entity.Step, action workflow.Action) error {
	switch action {
	case workflow.ActionArchive, workflow.ActionBypass:
		if !actor.HasRole(entity.RoleAdmin) {
			return fmt.Errorf("%w: user %d lacks role %q", workflow.ErrUnauthorized, actor.ID, entity.RoleAdmin)
		}
	default:
		if !actor.HasRole(current.RoleName) {
			return fmt.Errorf("%w: user %d lacks role %q for step %q",
				workflow.ErrUnauthorized, actor.ID, current.RoleName, current.Name)
		}
	}
	return nil
}
