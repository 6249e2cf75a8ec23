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

// WorkflowRepository implements port.WorkflowRepository
type WorkflowRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *sql.DB, logger *zap.Logger) port.WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a workflow by ID
func (r *WorkflowRepository) GetByID(ctx context.Context, id int64) (*entity.Workflow, error) {
	query := `
		SELECT id, tenant_id, event_id, participant_type_id, name, created_at, updated_at
		FROM workflows
		WHERE id = ?
	`
	return r.scanOne(ctx, query, id)
}

// GetByScope retrieves the single workflow for a tenant/event/participant
// type combination
func (r *WorkflowRepository) GetByScope(ctx context.Context, tenantID, eventID, participantTypeID int64) (*entity.Workflow, error) {
	query := `
		SELECT id, tenant_id, event_id, participant_type_id, name, created_at, updated_at
		FROM workflows
		WHERE tenant_id = ? AND event_id = ? AND participant_type_id = ?
	`
	return r.scanOne(ctx, query, tenantID, eventID, participantTypeID)
}

func (r *WorkflowRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*entity.Workflow, error) {
	var w entity.Workflow
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, args...).Scan(
		&w.ID,
		&w.TenantID,
		&w.EventID,
		&w.ParticipantTypeID,
		&w.Name,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow", zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return &w, nil
}

// getExecutor returns appropriate executor based on context
func (r *WorkflowRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.WorkflowRepository = (*WorkflowRepository)(nil)
