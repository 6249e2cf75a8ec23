package workflow

import (
	"fmt"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"
)

// Chain is a workflow's authored step list resolved into typed handles. The
// engine routes through these handles instead of name lookups at transition
// time, so a malformed chain surfaces as a configuration error up front.
type Chain struct {
	workflowID int64
	steps      map[int64]*entity.Step
	byRole     map[string]*entity.Step
	start      *entity.Step
	fastTrack  *entity.Step
}

// NewChain validates the authored steps of a workflow and resolves them into
// a Chain. It fails with ErrInvalidChain when the list is empty, a step
// belongs to another workflow, a next reference dangles, the chain loops, or
// the designated start step ("Request Received") is absent.
func NewChain(workflowID int64, steps []*entity.Step) (*Chain, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: workflow %d has no steps", ErrInvalidChain, workflowID)
	}

	c := &Chain{
		workflowID: workflowID,
		steps:      make(map[int64]*entity.Step, len(steps)),
		byRole:     make(map[string]*entity.Step, len(steps)),
	}

	for _, s := range steps {
		if s.WorkflowID != workflowID {
			return nil, fmt.Errorf("%w: step %d belongs to workflow %d, not %d",
				ErrInvalidChain, s.ID, s.WorkflowID, workflowID)
		}
		c.steps[s.ID] = s

		// First occurrence wins for role lookup; chains are authored with
		// one step per validator role.
		if _, ok := c.byRole[s.RoleName]; !ok {
			c.byRole[s.RoleName] = s
		}

		switch s.Name {
		case entity.StepNameRequestReceived:
			c.start = s
		case entity.StepNameMofaPrint:
			c.fastTrack = s
		}
	}

	for _, s := range steps {
		if s.NextStepID != nil {
			if _, ok := c.steps[*s.NextStepID]; !ok {
				return nil, fmt.Errorf("%w: step %d references missing next step %d",
					ErrInvalidChain, s.ID, *s.NextStepID)
			}
		}
	}

	// Each node has at most one forward hop, so any walk longer than the
	// chain itself has revisited a step.
	for _, s := range steps {
		hops := 0
		for cur := s; cur.NextStepID != nil; cur = c.steps[*cur.NextStepID] {
			hops++
			if hops > len(steps) {
				return nil, fmt.Errorf("%w: cycle detected from step %d", ErrInvalidChain, s.ID)
			}
		}
	}

	if c.start == nil {
		return nil, fmt.Errorf("%w: workflow %d has no %q step",
			ErrInvalidChain, workflowID, entity.StepNameRequestReceived)
	}

	return c, nil
}

// WorkflowID returns the owning workflow's ID
func (c *Chain) WorkflowID() int64 {
	return c.workflowID
}

// Start returns the designated start step ("Request Received")
func (c *Chain) Start() *entity.Step {
	return c.start
}

// FastTrack returns the designated fast-track print step ("MOFA Print"). A
// chain authored without one yields ErrInvalidChain; the engine surfaces
// this instead of silently staying put.
func (c *Chain) FastTrack() (*entity.Step, error) {
	if c.fastTrack == nil {
		return nil, fmt.Errorf("%w: workflow %d has no %q step",
			ErrInvalidChain, c.workflowID, entity.StepNameMofaPrint)
	}
	return c.fastTrack, nil
}

// Get returns the step with the given ID, if it belongs to the chain
func (c *Chain) Get(stepID int64) (*entity.Step, bool) {
	s, ok := c.steps[stepID]
	return s, ok
}

// StepForRole returns the step acted on by the given role
func (c *Chain) StepForRole(role string) (*entity.Step, bool) {
	s, ok := c.byRole[role]
	return s, ok
}

// Next returns the forward hop of the given step, or false at the tail
func (c *Chain) Next(step *entity.Step) (*entity.Step, bool) {
	if step.NextStepID == nil {
		return nil, false
	}
	s, ok := c.steps[*step.NextStepID]
	return s, ok
}

// RejectTarget computes where a rejection at the given step routes the
// participant and the resulting status. A rejection by the second-stage
// validator rewinds one stage and keeps the participant INPROGRESS; every
// other rejection returns the participant to the start step as REJECTED.
func (c *Chain) RejectTarget(current *entity.Step) (*entity.Step, Status, error) {
	if current.RoleName == entity.RoleSecondValidator {
		target, ok := c.StepForRole(entity.RoleFirstValidator)
		if !ok {
			return nil, "", fmt.Errorf("%w: workflow %d has no %q step to rewind to",
				ErrInvalidChain, c.workflowID, entity.RoleFirstValidator)
		}
		return target, StatusInProgress, nil
	}
	return c.start, StatusRejected, nil
}
