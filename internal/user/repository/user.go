package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/db"
	"medtransport/internal/user/model"
)

type UserRepository struct {
	db db.Querier
}

func NewUserRepository(database db.Querier) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, email, role, created_at FROM users WHERE id = $1`, id)

	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user %s not found", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetDriver resolves id to a user with role driver, the validation every
// driver-referencing write performs.
func (r *UserRepository) GetDriver(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, email, role, created_at FROM users WHERE id = $1 AND role = $2`,
		id, auth.RoleDriver)

	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("driver %s not found", id)
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return &u, nil
}

// ListDrivers returns the full driver roster, including drivers that have
// never reported a location.
func (r *UserRepository) ListDrivers(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, email, role, created_at FROM users WHERE role = $1 ORDER BY name`,
		auth.RoleDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, u)
	}
	return drivers, rows.Err()
}
