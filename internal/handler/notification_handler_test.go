package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

type fakeNotificationService struct {
	listUser   int64
	listStatus models.NotificationStatus
	readIDs    []int64
	markedAll  []int64
}

func (f *fakeNotificationService) List(_ context.Context, userID int64, status models.NotificationStatus) ([]models.Notification, error) {
	f.listUser = userID
	f.listStatus = status
	return []models.Notification{{ID: 1, AdminID: userID, Message: "test"}}, nil
}

func (f *fakeNotificationService) MarkRead(_ context.Context, id int64) error {
	f.readIDs = append(f.readIDs, id)
	return nil
}

func (f *fakeNotificationService) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	f.markedAll = append(f.markedAll, userID)
	return 4, nil
}

func newNotificationRouter(svc *fakeNotificationService, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewNotificationHandler(svc)
	group := r.Group("/notifications", withClaims(claims))
	group.GET("", h.List)
	group.POST("/:id/read", h.MarkRead)
	group.POST("/read-all", h.MarkAllRead)
	return r
}

func TestNotificationHandlerListScopesToCurrentUser(t *testing.T) {
	svc := &fakeNotificationService{}
	router := newNotificationRouter(svc, &models.JWTClaims{UserID: 9, Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications?status=UNREAD", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(9), svc.listUser)
	require.Equal(t, models.NotificationStatusUnread, svc.listStatus)
}

func TestNotificationHandlerListWithoutClaims(t *testing.T) {
	svc := &fakeNotificationService{}
	router := newNotificationRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, svc.listUser)
}

func TestNotificationHandlerMarkRead(t *testing.T) {
	svc := &fakeNotificationService{}
	router := newNotificationRouter(svc, &models.JWTClaims{UserID: 9, Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notifications/12/read", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []int64{12}, svc.readIDs)
}

func TestNotificationHandlerMarkAllReadReportsCount(t *testing.T) {
	svc := &fakeNotificationService{}
	router := newNotificationRouter(svc, &models.JWTClaims{UserID: 9, Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []int64{9}, svc.markedAll)

	var envelope struct {
		Data struct {
			Marked int64 `json:"marked"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, int64(4), envelope.Data.Marked)
}
