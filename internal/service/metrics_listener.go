package service

import (
	"context"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

// MetricsListener feeds request lifecycle events into Prometheus counters.
type MetricsListener struct {
	metrics *MetricsService
}

// NewMetricsListener creates a MetricsListener.
func NewMetricsListener(metrics *MetricsService) *MetricsListener {
	return &MetricsListener{metrics: metrics}
}

// OnSubmitted counts a new request by type.
func (l *MetricsListener) OnSubmitted(ctx context.Context, request *models.Request) {
	l.metrics.CountSubmitted(string(request.Type))
}

// OnResolved counts a resolution by outcome.
func (l *MetricsListener) OnResolved(ctx context.Context, request *models.Request, adminID int64) {
	l.metrics.CountResolved(string(request.Status))
}
