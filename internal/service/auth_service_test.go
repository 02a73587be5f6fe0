package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/config"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
)

type stubAuthStore struct {
	byEmail       map[string]*models.User
	lastLoginID   int64
	lastLoginErr  error
	lastLoginAt   time.Time
	lastLoginSeen bool
}

func (s *stubAuthStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *stubAuthStore) UpdateLastLogin(_ context.Context, id int64, ts time.Time) error {
	if s.lastLoginErr != nil {
		return s.lastLoginErr
	}
	s.lastLoginID = id
	s.lastLoginAt = ts
	s.lastLoginSeen = true
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *stubAuthStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	email := "admin@college.ru"
	name := "Администратор"
	hashStr := string(hash)
	store := &stubAuthStore{byEmail: map[string]*models.User{
		email: {
			ID:           1,
			Role:         models.RoleAdmin,
			Email:        &email,
			FullName:     &name,
			PasswordHash: &hashStr,
			Active:       true,
		},
	}}
	cfg := config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "schedule-api"}
	return NewAuthService(store, nil, zap.NewNop(), cfg), store
}

func TestAuthServiceLoginIssuesToken(t *testing.T) {
	svc, store := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@college.ru",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, int64(3600), resp.ExpiresIn)
	require.Equal(t, int64(1), resp.User.ID)
	require.Equal(t, models.RoleAdmin, resp.User.Role)
	require.True(t, store.lastLoginSeen)
	require.Equal(t, int64(1), store.lastLoginID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(1), claims.UserID)
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.Equal(t, "admin@college.ru", claims.Email)
	require.Equal(t, "schedule-api", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@college.ru",
		Password: "wrong",
	})
	requireAppError(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@college.ru",
		Password: "secret123",
	})
	requireAppError(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc, store := newAuthFixture(t)
	store.byEmail["admin@college.ru"].Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@college.ru",
		Password: "secret123",
	})
	requireAppError(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthServiceLoginToleratesLastLoginFailure(t *testing.T) {
	svc, store := newAuthFixture(t)
	store.lastLoginErr = sql.ErrConnDone

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@college.ru",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	requireAppError(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	svc, store := newAuthFixture(t)

	other := NewAuthService(store, nil, zap.NewNop(), config.JWTConfig{
		Secret:     "different-secret",
		Expiration: time.Hour,
		Issuer:     "schedule-api",
	})
	resp, err := other.Login(context.Background(), models.LoginRequest{
		Email:    "admin@college.ru",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	requireAppError(t, err, appErrors.ErrUnauthorized)
}
