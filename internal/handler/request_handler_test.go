package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/dto"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/middleware"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/response"
)

type fakeRequestService struct {
	submitted   *dto.CreateRequestRequest
	submitAs    int64
	submitErr   error
	listQuery   dto.RequestQuery
	approveID   int64
	approveBy   int64
	approveErr  error
	rejected    *dto.RejectRequestRequest
	result      *models.Request
	listResults []models.Request
}

func (f *fakeRequestService) Submit(_ context.Context, req dto.CreateRequestRequest, teacherID int64) (*models.Request, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = &req
	f.submitAs = teacherID
	return f.result, nil
}

func (f *fakeRequestService) List(_ context.Context, query dto.RequestQuery, _ *models.JWTClaims) ([]models.Request, error) {
	f.listQuery = query
	return f.listResults, nil
}

func (f *fakeRequestService) Get(_ context.Context, _ int64, _ *models.JWTClaims) (*models.Request, error) {
	return f.result, nil
}

func (f *fakeRequestService) Approve(_ context.Context, id int64, _ dto.ApproveRequestRequest, adminID int64) (*models.Request, error) {
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	f.approveID = id
	f.approveBy = adminID
	return f.result, nil
}

func (f *fakeRequestService) Reject(_ context.Context, id int64, req dto.RejectRequestRequest, adminID int64) (*models.Request, error) {
	f.rejected = &req
	f.approveID = id
	f.approveBy = adminID
	return f.result, nil
}

func withClaims(claims *models.JWTClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
		c.Next()
	}
}

func newRequestRouter(svc *fakeRequestService, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewRequestHandler(svc)
	group := r.Group("/requests", withClaims(claims))
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("/:id/approve", h.Approve)
	group.POST("/:id/reject", h.Reject)
	return r
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(body.Bytes(), &envelope))
	return envelope
}

func TestRequestHandlerCreate(t *testing.T) {
	svc := &fakeRequestService{result: &models.Request{ID: 7, Status: models.RequestStatusPending}}
	router := newRequestRouter(svc, &models.JWTClaims{UserID: 100, Role: models.RoleTeacher})

	payload := `{"request_type":"cancel","reason":"болезнь","schedule_id":55}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.submitted)
	require.Equal(t, models.RequestTypeCancel, svc.submitted.Type)
	require.Equal(t, int64(100), svc.submitAs)

	envelope := decodeEnvelope(t, w.Body)
	require.Nil(t, envelope.Error)
	require.NotNil(t, envelope.Data)
}

func TestRequestHandlerCreateWithoutClaims(t *testing.T) {
	svc := &fakeRequestService{}
	router := newRequestRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(`{"request_type":"cancel","reason":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, svc.submitted)
}

func TestRequestHandlerCreateRejectsBadJSON(t *testing.T) {
	svc := &fakeRequestService{}
	router := newRequestRouter(svc, &models.JWTClaims{UserID: 100, Role: models.RoleTeacher})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(`{`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	require.NotNil(t, envelope.Error)
	require.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestRequestHandlerListParsesQuery(t *testing.T) {
	svc := &fakeRequestService{}
	router := newRequestRouter(svc, &models.JWTClaims{UserID: 1, Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests?status=Pending,approved&type=CANCEL&teacher_id=100&limit=25", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.RequestTypeCancel, svc.listQuery.Type)
	require.Equal(t, []models.RequestStatus{models.RequestStatusPending, models.RequestStatusApproved}, svc.listQuery.Status)
	require.Equal(t, int64(100), svc.listQuery.TeacherID)
	require.Equal(t, 25, svc.listQuery.Limit)
}

func TestRequestHandlerListRejectsBadTeacherID(t *testing.T) {
	svc := &fakeRequestService{}
	router := newRequestRouter(svc, &models.JWTClaims{UserID: 1, Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests?teacher_id=abc", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerApprovePropagatesConflict(t *testing.T) {
	svc := &fakeRequestService{approveErr: appErrors.ErrInvalidState}
	router := newRequestRouter(svc, &models.JWTClaims{UserID: 1, Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests/5/approve", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	require.Equal(t, appErrors.ErrInvalidState.Code, envelope.Error.Code)
}

func TestRequestHandlerRejectCarriesComment(t *testing.T) {
	svc := &fakeRequestService{result: &models.Request{ID: 5, Status: models.RequestStatusRejected}}
	router := newRequestRouter(svc, &models.JWTClaims{UserID: 2, Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests/5/reject", bytes.NewBufferString(`{"comment":"аудитория занята"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.rejected)
	require.Equal(t, "аудитория занята", svc.rejected.Comment)
	require.Equal(t, int64(5), svc.approveID)
	require.Equal(t, int64(2), svc.approveBy)
}

func TestRequestHandlerGetRejectsBadID(t *testing.T) {
	svc := &fakeRequestService{}
	router := newRequestRouter(svc, &models.JWTClaims{UserID: 1, Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests/zero", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
