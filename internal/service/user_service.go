package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
)

type userStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id int64, specialty, groupName *string) error
	ListAdmins(ctx context.Context) ([]models.User, error)
}

// UserService manages the chat-identity directory.
type UserService struct {
	repo   userStore
	logger *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo userStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// Get returns one user by chat identity.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, err
}

// RegisterContact records a chat identity on first contact. Existing
// users keep their role and profile; the call is idempotent.
func (s *UserService) RegisterContact(ctx context.Context, id int64, fullName string) (*models.User, error) {
	user := &models.User{
		ID:       id,
		Role:     models.RoleStudent,
		FullName: optionalString(fullName),
		Active:   true,
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register contact")
	}
	return s.Get(ctx, id)
}

// UpdateProfile sets the specialty and group a user follows. Empty
// values leave the existing ones untouched.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, specialty, groupName string) (*models.User, error) {
	specialty = strings.TrimSpace(specialty)
	groupName = strings.TrimSpace(groupName)
	if specialty == "" && groupName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	if err := s.repo.UpdateProfile(ctx, id, optionalString(specialty), optionalString(groupName)); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Admins lists the active admin accounts.
func (s *UserService) Admins(ctx context.Context) ([]models.User, error) {
	return s.repo.ListAdmins(ctx)
}
