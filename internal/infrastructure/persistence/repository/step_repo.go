package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/application/port"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"
	"github.com/shegerlabs/accreditationadmin-sub000/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// StepRepository implements port.StepRepository
type StepRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStepRepository creates a new step repository
func NewStepRepository(db *sql.DB, logger *zap.Logger) port.StepRepository {
	return &StepRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a step by ID
func (r *StepRepository) GetByID(ctx context.Context, id int64) (*entity.Step, error) {
	query := `
		SELECT id, workflow_id, name, role_name, next_step_id, created_at
		FROM steps
		WHERE id = ?
	`

	step, err := scanStep(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get step", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get step: %w", err)
	}

	return step, nil
}

// GetByWorkflowID retrieves all steps of a workflow in authored order
func (r *StepRepository) GetByWorkflowID(ctx context.Context, workflowID int64) ([]*entity.Step, error) {
	query := `
		SELECT id, workflow_id, name, role_name, next_step_id, created_at
		FROM steps
		WHERE workflow_id = ?
		ORDER BY id
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, workflowID)
	if err != nil {
		r.logger.Error("Failed to list workflow steps", zap.Int64("workflow_id", workflowID), zap.Error(err))
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []*entity.Step
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, step)
	}

	return steps, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStep(row rowScanner) (*entity.Step, error) {
	var (
		step entity.Step
		next sql.NullInt64
	)
	if err := row.Scan(&step.ID, &step.WorkflowID, &step.Name, &step.RoleName, &next, &step.CreatedAt); err != nil {
		return nil, err
	}
	if next.Valid {
		step.NextStepID = &next.Int64
	}
	return &step, nil
}

// getExecutor returns appropriate executor based on context
func (r *StepRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.StepRepository = (*StepRepository)(nil)
