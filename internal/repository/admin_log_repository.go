package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

// AdminLogRepository stores the append-only audit trail. There is
// deliberately no update or delete operation on this type.
type AdminLogRepository struct {
	db *sqlx.DB
}

// NewAdminLogRepository constructs the repository.
func NewAdminLogRepository(db *sqlx.DB) *AdminLogRepository {
	return &AdminLogRepository{db: db}
}

// Append inserts one audit entry and returns its id.
func (r *AdminLogRepository) Append(ctx context.Context, log *models.AdminLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO admin_logs (admin_id, action_type, description, old_value, new_value, created_at)
	VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		log.AdminID, log.ActionType, log.Description, log.OldValue, log.NewValue, log.CreatedAt,
	).Scan(&log.ID); err != nil {
		return fmt.Errorf("append admin log: %w", err)
	}
	return nil
}

// List returns audit entries, newest first.
func (r *AdminLogRepository) List(ctx context.Context, limit, offset int) ([]models.AdminLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT id, admin_id, action_type, description, old_value, new_value, created_at
	FROM admin_logs ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)
	var logs []models.AdminLog
	if err := r.db.SelectContext(ctx, &logs, query); err != nil {
		return nil, fmt.Errorf("list admin logs: %w", err)
	}
	return logs, nil
}
