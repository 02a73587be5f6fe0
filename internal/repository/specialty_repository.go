package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

// SpecialtyRepository stores the study programs timetables hang off.
type SpecialtyRepository struct {
	db *sqlx.DB
}

// NewSpecialtyRepository constructs the repository.
func NewSpecialtyRepository(db *sqlx.DB) *SpecialtyRepository {
	return &SpecialtyRepository{db: db}
}

// Upsert inserts a specialty, ignoring duplicates by name.
func (r *SpecialtyRepository) Upsert(ctx context.Context, specialty *models.Specialty) error {
	const query = `INSERT INTO specialties (name, code) VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET code = COALESCE(EXCLUDED.code, specialties.code)
	RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, specialty.Name, specialty.Code).Scan(&specialty.ID); err != nil {
		return fmt.Errorf("upsert specialty: %w", err)
	}
	return nil
}

// List returns all specialties ordered by name.
func (r *SpecialtyRepository) List(ctx context.Context) ([]models.Specialty, error) {
	const query = `SELECT id, name, code FROM specialties ORDER BY name`
	var specialties []models.Specialty
	if err := r.db.SelectContext(ctx, &specialties, query); err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	return specialties, nil
}

// GetByID returns one specialty.
func (r *SpecialtyRepository) GetByID(ctx context.Context, id int64) (*models.Specialty, error) {
	const query = `SELECT id, name, code FROM specialties WHERE id = $1`
	var specialty models.Specialty
	if err := r.db.GetContext(ctx, &specialty, query, id); err != nil {
		return nil, err
	}
	return &specialty, nil
}
