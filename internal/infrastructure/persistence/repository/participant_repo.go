package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/application/port"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/workflow"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ParticipantRepository implements port.ParticipantRepository
type ParticipantRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *sql.DB, logger *zap.Logger) port.ParticipantRepository {
	return &ParticipantRepository{
		db:     db,
		logger: logger,
	}
}

// GetWithStep loads a participant joined with its current step
func (r *ParticipantRepository) GetWithStep(ctx context.Context, id int64) (*entity.Participant, error) {
	query := `
		SELECT p.id, p.tenant_id, p.event_id, p.participant_type_id, p.workflow_id,
			p.current_step_id, p.status, p.full_name, p.email, p.created_at, p.updated_at,
			s.id, s.workflow_id, s.name, s.role_name, s.next_step_id, s.created_at
		FROM participants p
		JOIN steps s ON s.id = p.current_step_id
		WHERE p.id = ?
	`

	var (
		p        entity.Participant
		step     entity.Step
		nextStep sql.NullInt64
	)

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.TenantID,
		&p.EventID,
		&p.ParticipantTypeID,
		&p.WorkflowID,
		&p.CurrentStepID,
		&p.Status,
		&p.FullName,
		&p.Email,
		&p.CreatedAt,
		&p.UpdatedAt,
		&step.ID,
		&step.WorkflowID,
		&step.Name,
		&step.RoleName,
		&nextStep,
		&step.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get participant", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if nextStep.Valid {
		step.NextStepID = &nextStep.Int64
	}
	p.CurrentStep = &step

	return &p, nil
}

// UpdateStepStatus conditionally moves the participant. The predicate on
// current_step_id is the optimistic concurrency check: a concurrent
// transition that already moved the pointer makes this a zero-row update,
// reported as workflow.ErrConflict.
func (r *ParticipantRepository) UpdateStepStatus(ctx context.Context, id, stepID int64, status string, expectedStepID int64) error {
	query := `
		UPDATE participants
		SET current_step_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_step_id = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, stepID, status, id, expectedStepID)
	if err != nil {
		r.logger.Error("Failed to update participant step/status",
			zap.Int64("id", id), zap.Int64("step_id", stepID), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update participant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: participant %d no longer at step %d",
			workflow.ErrConflict, id, expectedStepID)
	}

	return nil
}

// getExecutor returns appropriate executor based on context
func (r *ParticipantRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.ParticipantRepository = (*ParticipantRepository)(nil)
