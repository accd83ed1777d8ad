package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"medtransport/internal/common/apperr"
	"medtransport/internal/common/db"
	"medtransport/internal/common/pagination"
	"medtransport/internal/vehicle/model"
)

// Claim moves an available vehicle to in_use. It must run inside the
// caller's transaction: the FOR UPDATE lock serializes concurrent claims
// so only one can ever observe the vehicle as available.
func Claim(ctx context.Context, q db.Querier, vehicleID string) error {
	var status model.Status
	err := q.QueryRow(ctx, `SELECT status FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("vehicle %s not found", vehicleID)
		}
		return fmt.Errorf("failed to lock vehicle %s: %w", vehicleID, err)
	}
	if status != model.StatusAvailable {
		return apperr.Conflict("vehicle is %s", status)
	}
	_, err = q.Exec(ctx, `UPDATE vehicles SET status = $1, updated_at = now() WHERE id = $2`,
		model.StatusInUse, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to claim vehicle %s: %w", vehicleID, err)
	}
	return nil
}

// Release moves a vehicle back to available. Releasing an already
// available vehicle is a no-op.
func Release(ctx context.Context, q db.Querier, vehicleID string) error {
	tag, err := q.Exec(ctx, `UPDATE vehicles SET status = $1, updated_at = now() WHERE id = $2`,
		model.StatusAvailable, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to release vehicle %s: %w", vehicleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("vehicle %s not found", vehicleID)
	}
	return nil
}

type VehicleRepository struct {
	db db.Querier
}

func NewVehicleRepository(database db.Querier) *VehicleRepository {
	return &VehicleRepository{db: database}
}

func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	row := r.db.QueryRow(ctx, `
		SELECT v.id, v.name, v.plate_number, v.type, COALESCE(vt.name, ''), v.status, v.created_at, v.updated_at
		FROM vehicles v
		LEFT JOIN vehicle_types vt ON vt.id = v.type
		WHERE v.id = $1
	`, id)

	var v model.Vehicle
	err := row.Scan(&v.ID, &v.Name, &v.PlateNumber, &v.Type, &v.TypeName, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("vehicle %s not found", id)
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &v, nil
}

func (r *VehicleRepository) List(ctx context.Context, page, size int) ([]model.Vehicle, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM vehicles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT v.id, v.name, v.plate_number, v.type, COALESCE(vt.name, ''), v.status, v.created_at, v.updated_at
		FROM vehicles v
		LEFT JOIN vehicle_types vt ON vt.id = v.type
		ORDER BY v.name
		LIMIT $1 OFFSET $2
	`, size, pagination.Offset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.PlateNumber, &v.Type, &v.TypeName, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, total, rows.Err()
}
