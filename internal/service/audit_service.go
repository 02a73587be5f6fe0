package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/export"
)

type auditStore interface {
	Append(ctx context.Context, log *models.AdminLog) error
	List(ctx context.Context, limit, offset int) ([]models.AdminLog, error)
}

// AuditService exposes the append-only audit trail. There is no way to
// edit or remove entries through it.
type AuditService struct {
	repo   auditStore
	logger *zap.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(repo auditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record appends an audit entry.
func (s *AuditService) Record(ctx context.Context, entry *models.AdminLog) error {
	if entry.ActionType == "" {
		return appErrors.Clone(appErrors.ErrValidation, "action type must not be empty")
	}
	return s.repo.Append(ctx, entry)
}

// List returns audit entries newest first.
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AdminLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// ExportDataset flattens recent audit entries into a tabular dataset
// for the CSV and PDF exporters.
func (s *AuditService) ExportDataset(ctx context.Context, limit int) (*export.Dataset, error) {
	entries, err := s.List(ctx, limit, 0)
	if err != nil {
		return nil, err
	}
	dataset := &export.Dataset{
		Title:   "Audit log",
		Headers: []string{"ID", "Admin", "Action", "Description", "Old value", "New value", "At"},
	}
	for _, e := range entries {
		dataset.Rows = append(dataset.Rows, []string{
			fmt.Sprintf("%d", e.ID),
			fmt.Sprintf("%d", e.AdminID),
			e.ActionType,
			e.Description,
			stringOrDash(e.OldValue),
			stringOrDash(e.NewValue),
			e.CreatedAt.Format(time.RFC3339),
		})
	}
	return dataset, nil
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
