package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
)

type stubUserStore struct {
	users    map[int64]*models.User
	upserts  int
	profiles map[int64][2]*string
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		users:    map[int64]*models.User{},
		profiles: map[int64][2]*string{},
	}
}

func (s *stubUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *stubUserStore) Upsert(_ context.Context, user *models.User) error {
	s.upserts++
	if _, ok := s.users[user.ID]; !ok {
		copied := *user
		s.users[user.ID] = &copied
	}
	return nil
}

func (s *stubUserStore) UpdateProfile(_ context.Context, id int64, specialty, groupName *string) error {
	s.profiles[id] = [2]*string{specialty, groupName}
	if user, ok := s.users[id]; ok {
		if specialty != nil {
			user.Specialty = specialty
		}
		if groupName != nil {
			user.GroupName = groupName
		}
	}
	return nil
}

func (s *stubUserStore) ListAdmins(_ context.Context) ([]models.User, error) {
	admins := make([]models.User, 0)
	for _, user := range s.users {
		if user.Role == models.RoleAdmin && user.Active {
			admins = append(admins, *user)
		}
	}
	return admins, nil
}

func TestUserServiceRegisterContactIsIdempotent(t *testing.T) {
	store := newStubUserStore()
	svc := NewUserService(store, zap.NewNop())

	user, err := svc.RegisterContact(context.Background(), 500, "Петров Пётр")
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, user.Role)
	require.True(t, user.Active)

	// A returning teacher keeps the role assigned out of band.
	store.users[500].Role = models.RoleTeacher
	again, err := svc.RegisterContact(context.Background(), 500, "Петров Пётр")
	require.NoError(t, err)
	require.Equal(t, models.RoleTeacher, again.Role)
	require.Equal(t, 2, store.upserts)
}

func TestUserServiceUpdateProfileRequiresSomething(t *testing.T) {
	store := newStubUserStore()
	svc := NewUserService(store, zap.NewNop())

	_, err := svc.UpdateProfile(context.Background(), 500, "  ", "")
	requireAppError(t, err, appErrors.ErrValidation)
}

func TestUserServiceUpdateProfileSetsFields(t *testing.T) {
	store := newStubUserStore()
	store.users[500] = &models.User{ID: 500, Role: models.RoleStudent, Active: true}
	svc := NewUserService(store, zap.NewNop())

	user, err := svc.UpdateProfile(context.Background(), 500, "ИСиП", "")
	require.NoError(t, err)
	require.NotNil(t, user.Specialty)
	require.Equal(t, "ИСиП", *user.Specialty)
	require.Nil(t, store.profiles[500][1])
}

func TestUserServiceGetUnknownUser(t *testing.T) {
	svc := NewUserService(newStubUserStore(), zap.NewNop())

	_, err := svc.Get(context.Background(), 404)
	requireAppError(t, err, appErrors.ErrNotFound)
}
