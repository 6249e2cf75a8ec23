package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/workflow"
)

// Mock repositories

type mockParticipantRepo struct {
	getWithStepFunc      func(ctx context.Context, id int64) (*entity.Participant, error)
	updateStepStatusFunc func(ctx context.Context, id, stepID int64, status string, expectedStepID int64) error
	updates              []updateCall
}

type updateCall struct {
	id             int64
	stepID         int64
	status         string
	expectedStepID int64
}

func (m *mockParticipantRepo) GetWithStep(ctx context.Context, id int64) (*entity.Participant, error) {
	if m.getWithStepFunc != nil {
		return m.getWithStepFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockParticipantRepo) UpdateStepStatus(ctx context.Context, id, stepID int64, status string, expectedStepID int64) error {
	m.updates = append(m.updates, updateCall{id, stepID, status, expectedStepID})
	if m.updateStepStatusFunc != nil {
		return m.updateStepStatusFunc(ctx, id, stepID, status, expectedStepID)
	}
	return nil
}

type mockStepRepo struct {
	steps []*entity.Step
}

func (m *mockStepRepo) GetByID(ctx context.Context, id int64) (*entity.Step, error) {
	for _, s := range m.steps {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockStepRepo) GetByWorkflowID(ctx context.Context, workflowID int64) ([]*entity.Step, error) {
	var out []*entity.Step
	for _, s := range m.steps {
		if s.WorkflowID == workflowID {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockApprovalRepo struct {
	createFunc func(ctx context.Context, approval *entity.Approval) error
	created    []*entity.Approval
}

func (m *mockApprovalRepo) Create(ctx context.Context, approval *entity.Approval) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, approval); err != nil {
			return err
		}
	}
	m.created = append(m.created, approval)
	return nil
}

func (m *mockApprovalRepo) GetByParticipantID(ctx context.Context, participantID int64) ([]*entity.Approval, error) {
	return m.created, nil
}

type mockUserRepo struct {
	users map[int64]*entity.User
}

func (m *mockUserRepo) GetWithRoles(ctx context.Context, id int64) (*entity.User, error) {
	return m.users[id], nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type notifyCall struct {
	kind    string
	id      int64
	remarks string
}

type mockNotifier struct {
	calls []notifyCall
}

func (m *mockNotifier) NotifyRejection(p *entity.Participant, remarks string) {
	m.calls = append(m.calls, notifyCall{"rejection", p.ID, remarks})
}

func (m *mockNotifier) NotifyArchival(p *entity.Participant, remarks string) {
	m.calls = append(m.calls, notifyCall{"archival", p.ID, remarks})
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Fixture: a five-step chain for workflow 1.
//
//	Request Received -> First Validation -> Second Validation -> MOFA Print -> Badge Collection
func chainSteps() []*entity.Step {
	next := func(id int64) *int64 { return &id }
	return []*entity.Step{
		{ID: 1, WorkflowID: 1, Name: entity.StepNameRequestReceived, RoleName: "Receptionist", NextStepID: next(2)},
		{ID: 2, WorkflowID: 1, Name: "First Validation", RoleName: entity.RoleFirstValidator, NextStepID: next(3)},
		{ID: 3, WorkflowID: 1, Name: "Second Validation", RoleName: entity.RoleSecondValidator, NextStepID: next(4)},
		{ID: 4, WorkflowID: 1, Name: entity.StepNameMofaPrint, RoleName: "Print Operator", NextStepID: next(5)},
		{ID: 5, WorkflowID: 1, Name: "Badge Collection", RoleName: "Collection Desk"},
	}
}

func stepByID(steps []*entity.Step, id int64) *entity.Step {
	for _, s := range steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

type engineFixture struct {
	engine       Engine
	participants *mockParticipantRepo
	approvals    *mockApprovalRepo
	notifier     *mockNotifier
}

func newEngineFixture(t *testing.T, p *entity.Participant) *engineFixture {
	t.Helper()

	steps := chainSteps()
	p.CurrentStep = stepByID(steps, p.CurrentStepID)

	participants := &mockParticipantRepo{
		getWithStepFunc: func(ctx context.Context, id int64) (*entity.Participant, error) {
			if id == p.ID {
				return p, nil
			}
			return nil, nil
		},
	}
	approvals := &mockApprovalRepo{}
	notifier := &mockNotifier{}
	users := &mockUserRepo{users: map[int64]*entity.User{
		10: {ID: 10, Username: "reception", Roles: []string{"Receptionist"}},
		11: {ID: 11, Username: "validator1", Roles: []string{entity.RoleFirstValidator}},
		12: {ID: 12, Username: "validator2", Roles: []string{entity.RoleSecondValidator}},
		13: {ID: 13, Username: "printer", Roles: []string{"Print Operator"}},
		14: {ID: 14, Username: "collection", Roles: []string{"Collection Desk"}},
		15: {ID: 15, Username: "admin", Roles: []string{entity.RoleAdmin}},
	}}

	return &engineFixture{
		engine: NewEngine(
			participants,
			&mockStepRepo{steps: steps},
			approvals,
			users,
			&mockTxManager{},
			notifier,
			nopLogger{},
		),
		participants: participants,
		approvals:    approvals,
		notifier:     notifier,
	}
}

func TestEngine_Approve(t *testing.T) {
	t.Run("advances to the next step", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		result, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 11, Action: workflow.ActionApprove,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), result.StepID)
		assert.Equal(t, workflow.StatusInProgress, result.Status)
		assert.True(t, result.Moved)

		require.Len(t, f.participants.updates, 1)
		assert.Equal(t, updateCall{100, 3, entity.StatusInProgress, 2}, f.participants.updates[0])
		assert.Empty(t, f.notifier.calls)
	})

	t.Run("is a recorded no-op at the chain tail", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 5, Status: entity.StatusPrinted}
		f := newEngineFixture(t, p)

		result, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 14, Action: workflow.ActionApprove,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(5), result.StepID)
		assert.Equal(t, workflow.Status(entity.StatusPrinted), result.Status)
		assert.False(t, result.Moved)

		// Decision is still audited and the unchanged pair still persisted
		require.Len(t, f.approvals.created, 1)
		require.Len(t, f.participants.updates, 1)
		assert.Equal(t, updateCall{100, 5, entity.StatusPrinted, 5}, f.participants.updates[0])
	})
}

func TestEngine_Reject(t *testing.T) {
	t.Run("second-stage rejection rewinds without notifying", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 3, Status: entity.StatusInProgress, Email: "a@b.c"}
		f := newEngineFixture(t, p)

		result, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 12, Action: workflow.ActionReject,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(2), result.StepID)
		assert.Equal(t, workflow.StatusInProgress, result.Status)
		assert.Empty(t, f.notifier.calls)
	})

	t.Run("first-stage rejection returns to start and notifies once", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress, Email: "a@b.c"}
		f := newEngineFixture(t, p)

		result, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 11, Action: workflow.ActionReject,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.StepID)
		assert.Equal(t, workflow.StatusRejected, result.Status)

		require.Len(t, f.notifier.calls, 1)
		assert.Equal(t, "rejection", f.notifier.calls[0].kind)
	})

	t.Run("rejection by any other role also returns to start", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 4, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		result, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 13, Action: workflow.ActionReject,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.StepID)
		assert.Equal(t, workflow.StatusRejected, result.Status)
		require.Len(t, f.notifier.calls, 1)
	})

	t.Run("records a FAILURE audit row", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		_, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 11, Action: workflow.ActionReject,
		})

		require.NoError(t, err)
		require.Len(t, f.approvals.created, 1)
		a := f.approvals.created[0]
		assert.Equal(t, entity.ResultFailure, a.Result)
		assert.Equal(t, int64(2), a.StepID) // the step the participant was at
		assert.Equal(t, int64(11), a.UserID)
		assert.Equal(t, "Rejected due to compliance issues.", a.Remarks)
	})
}

func TestEngine_PrintAndNotify(t *testing.T) {
	tests := []struct {
		name       string
		action     workflow.Action
		wantStatus workflow.Status
	}{
		{"print advances with PRINTED", workflow.ActionPrint, workflow.StatusPrinted},
		{"notify advances with NOTIFIED", workflow.ActionNotify, workflow.StatusNotified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 4, Status: entity.StatusInProgress}
			f := newEngineFixture(t, p)

			result, err := f.engine.Process(context.Background(), ProcessRequest{
				ParticipantID: 100, ActorID: 13, Action: tt.action,
			})

			require.NoError(t, err)
			assert.Equal(t, int64(5), result.StepID)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.True(t, result.Moved)
			assert.Empty(t, f.notifier.calls)

			require.Len(t, f.approvals.created, 1)
			assert.Equal(t, entity.ResultSuccess, f.approvals.created[0].Result)
		})
	}
}

func TestEngine_Bypass(t *testing.T) {
	p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress}
	f := newEngineFixture(t, p)

	result, err := f.engine.Process(context.Background(), ProcessRequest{
		ParticipantID: 100, ActorID: 15, Action: workflow.ActionBypass,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4), result.StepID)
	assert.Equal(t, entity.StepNameMofaPrint, result.StepName)
	assert.Equal(t, workflow.StatusBypassed, result.Status)
	assert.Empty(t, f.notifier.calls)
}

func TestEngine_Archive(t *testing.T) {
	t.Run("keeps the step, archives and notifies", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 3, Status: entity.StatusInProgress, Email: "a@b.c"}
		f := newEngineFixture(t, p)

		result, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 15, Action: workflow.ActionArchive,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(3), result.StepID)
		assert.Equal(t, workflow.StatusArchived, result.Status)
		assert.False(t, result.Moved)

		require.Len(t, f.notifier.calls, 1)
		assert.Equal(t, "archival", f.notifier.calls[0].kind)
	})

	t.Run("is idempotent with one audit row per call", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 3, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		for i := 0; i < 2; i++ {
			result, err := f.engine.Process(context.Background(), ProcessRequest{
				ParticipantID: 100, ActorID: 15, Action: workflow.ActionArchive,
			})
			require.NoError(t, err)
			assert.Equal(t, workflow.StatusArchived, result.Status)
			// keep the fixture's view of the row consistent with the update
			p.Status = entity.StatusArchived
		}

		assert.Len(t, f.approvals.created, 2)
		assert.Len(t, f.participants.updates, 2)
	})
}

func TestEngine_Remarks(t *testing.T) {
	t.Run("caller remarks are preserved", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		_, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 11, Action: workflow.ActionApprove, Remarks: "documents verified",
		})

		require.NoError(t, err)
		require.Len(t, f.approvals.created, 1)
		assert.Equal(t, "documents verified", f.approvals.created[0].Remarks)
	})

	t.Run("empty remarks fall back to the canonical default", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		_, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 11, Action: workflow.ActionApprove,
		})

		require.NoError(t, err)
		require.Len(t, f.approvals.created, 1)
		assert.Equal(t, "Approved successfully.", f.approvals.created[0].Remarks)
	})
}

func TestEngine_Authorization(t *testing.T) {
	t.Run("actor without the step role is rejected", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 3, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		// first validator acting on the second validation step
		_, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 11, Action: workflow.ActionApprove,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, workflow.ErrUnauthorized)
		assert.Empty(t, f.approvals.created)
		assert.Empty(t, f.participants.updates)
	})

	t.Run("archive and bypass require the admin role", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 3, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		for _, action := range []workflow.Action{workflow.ActionArchive, workflow.ActionBypass} {
			_, err := f.engine.Process(context.Background(), ProcessRequest{
				ParticipantID: 100, ActorID: 12, Action: action,
			})
			assert.ErrorIs(t, err, workflow.ErrUnauthorized, "action %s", action)
		}
	})
}

func TestEngine_Failures(t *testing.T) {
	t.Run("unknown participant", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		_, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 999, ActorID: 11, Action: workflow.ActionApprove,
		})

		assert.ErrorIs(t, err, workflow.ErrNotFound)
	})

	t.Run("unknown acting user", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		_, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 999, Action: workflow.ActionApprove,
		})

		assert.ErrorIs(t, err, workflow.ErrNotFound)
	})

	t.Run("invalid action", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)

		_, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 11, Action: "ESCALATE",
		})

		assert.ErrorIs(t, err, workflow.ErrInvalidAction)
	})

	t.Run("concurrent transition surfaces as a conflict", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)
		f.participants.updateStepStatusFunc = func(ctx context.Context, id, stepID int64, status string, expectedStepID int64) error {
			return workflow.ErrConflict
		}

		_, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 11, Action: workflow.ActionApprove,
		})

		assert.ErrorIs(t, err, workflow.ErrConflict)
		assert.Empty(t, f.notifier.calls)
	})

	t.Run("audit insert failure is fatal", func(t *testing.T) {
		p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 2, Status: entity.StatusInProgress}
		f := newEngineFixture(t, p)
		f.approvals.createFunc = func(ctx context.Context, approval *entity.Approval) error {
			return errors.New("disk full")
		}

		_, err := f.engine.Process(context.Background(), ProcessRequest{
			ParticipantID: 100, ActorID: 11, Action: workflow.ActionApprove,
		})

		require.Error(t, err)
		assert.Empty(t, f.participants.updates)
	})
}

func TestEngine_EveryCallAuditsExactlyOnce(t *testing.T) {
	actors := map[workflow.Action]int64{
		workflow.ActionApprove: 12,
		workflow.ActionReject:  12,
		workflow.ActionPrint:   12,
		workflow.ActionNotify:  12,
		workflow.ActionArchive: 15,
		workflow.ActionBypass:  15,
	}

	for action, actor := range actors {
		t.Run(action.String(), func(t *testing.T) {
			p := &entity.Participant{ID: 100, WorkflowID: 1, CurrentStepID: 3, Status: entity.StatusInProgress}
			f := newEngineFixture(t, p)

			_, err := f.engine.Process(context.Background(), ProcessRequest{
				ParticipantID: 100, ActorID: actor, Action: action,
			})

			require.NoError(t, err)
			require.Len(t, f.approvals.created, 1)

			want := entity.ResultSuccess
			if action == workflow.ActionReject {
				want = entity.ResultFailure
			}
			assert.Equal(t, want, f.approvals.created[0].Result)
		})
	}
}
