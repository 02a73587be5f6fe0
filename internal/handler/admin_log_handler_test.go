package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/export"
)

type fakeAuditService struct {
	limit  int
	offset int
}

func (f *fakeAuditService) List(_ context.Context, limit, offset int) ([]models.AdminLog, error) {
	f.limit = limit
	f.offset = offset
	return []models.AdminLog{{ID: 1, AdminID: 2, ActionType: models.AdminActionScheduleChange}}, nil
}

func (f *fakeAuditService) ExportDataset(_ context.Context, limit int) (*export.Dataset, error) {
	f.limit = limit
	return &export.Dataset{
		Title:   "Audit log",
		Headers: []string{"ID"},
		Rows:    [][]string{{"1"}},
	}, nil
}

type fakeRenderer struct {
	payload []byte
	calls   int
}

func (f *fakeRenderer) Render(_ *export.Dataset) ([]byte, error) {
	f.calls++
	return f.payload, nil
}

func newAdminLogRouter(svc *fakeAuditService, csv, pdf *fakeRenderer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAdminLogHandler(svc, csv, pdf)
	r.GET("/admin/logs", h.List)
	r.GET("/admin/logs/export", h.Export)
	return r
}

func TestAdminLogHandlerListUsesPaging(t *testing.T) {
	svc := &fakeAuditService{}
	router := newAdminLogRouter(svc, &fakeRenderer{}, &fakeRenderer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/logs?limit=30&offset=60", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 30, svc.limit)
	require.Equal(t, 60, svc.offset)
}

func TestAdminLogHandlerExportCSV(t *testing.T) {
	svc := &fakeAuditService{}
	csv := &fakeRenderer{payload: []byte("ID\n1\n")}
	pdf := &fakeRenderer{}
	router := newAdminLogRouter(svc, csv, pdf)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/logs/export", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, csv.calls)
	require.Zero(t, pdf.calls)
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, w.Header().Get("Content-Disposition"), "audit-log-")
	require.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
}

func TestAdminLogHandlerExportRejectsUnknownFormat(t *testing.T) {
	svc := &fakeAuditService{}
	router := newAdminLogRouter(svc, &fakeRenderer{}, &fakeRenderer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/logs/export?format=xlsx", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
