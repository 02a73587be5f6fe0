package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

const userColumns = `user_id, role, specialty, group_name, full_name, email, password_hash,
	active, last_login, created_at, updated_at`

// UserRepository maps external identities to roles and profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by external identity.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE user_id = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the admin account with the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert registers a user on first contact, leaving an existing row
// untouched (the chat front end calls this on every /start).
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	const query = `INSERT INTO users (user_id, role, specialty, group_name, full_name, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
	ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query,
		user.ID, user.Role, user.Specialty, user.GroupName, user.FullName, now,
	); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// UpdateProfile stores the user's chosen specialty and group.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, specialty, groupName *string) error {
	const query = `UPDATE users SET specialty = COALESCE($1, specialty),
	group_name = COALESCE($2, group_name), updated_at = $3 WHERE user_id = $4`
	if _, err := r.db.ExecContext(ctx, query, specialty, groupName, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the latest successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	const query = `UPDATE users SET last_login = $1, updated_at = $1 WHERE user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, ts, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// ListAdmins returns every active admin identity; submission
// notifications fan out to all of them.
func (r *UserRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE role = $1 AND active = TRUE ORDER BY user_id", userColumns)
	var admins []models.User
	if err := r.db.SelectContext(ctx, &admins, query, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}
