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

// ApprovalRepository implements port.ApprovalRepository. The approvals
// table is append-only; there is no update or delete statement here.
type ApprovalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *sql.DB, logger *zap.Logger) port.ApprovalRepository {
	return &ApprovalRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends one audit entry
func (r *ApprovalRepository) Create(ctx context.Context, approval *entity.Approval) error {
	query := `
		INSERT INTO approvals (participant_id, step_id, user_id, result, remarks)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		approval.ParticipantID,
		approval.StepID,
		approval.UserID,
		approval.Result,
		approval.Remarks,
	)
	if err != nil {
		r.logger.Error("Failed to create approval", zap.Int64("participant_id", approval.ParticipantID), zap.Error(err))
		return fmt.Errorf("failed to create approval: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	approval.ID = id
	return nil
}

// GetByParticipantID retrieves a participant's decisions oldest first
func (r *ApprovalRepository) GetByParticipantID(ctx context.Context, participantID int64) ([]*entity.Approval, error) {
	query := `
		SELECT id, participant_id, step_id, user_id, result, remarks, created_at
		FROM approvals
		WHERE participant_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, participantID)
	if err != nil {
		r.logger.Error("Failed to list approvals", zap.Int64("participant_id", participantID), zap.Error(err))
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	defer rows.Close()

	var approvals []*entity.Approval
	for rows.Next() {
		var a entity.Approval
		err := rows.Scan(
			&a.ID,
			&a.ParticipantID,
			&a.StepID,
			&a.UserID,
			&a.Result,
			&a.Remarks,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		approvals = append(approvals, &a)
	}

	return approvals, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *ApprovalRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.ApprovalRepository = (*ApprovalRepository)(nil)
