package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medtransport/internal/common/db"
	"medtransport/internal/common/pagination"
	"medtransport/internal/location/model"
)

// LocationRepository is the append-only store of driver position samples.
// Rows are never updated or deleted.
type LocationRepository struct {
	db db.Querier
}

func NewLocationRepository(database db.Querier) *LocationRepository {
	return &LocationRepository{db: database}
}

// Insert appends a new sample with a server-assigned timestamp. Rapid
// repeated pings are all kept; nothing is deduplicated.
func (r *LocationRepository) Insert(ctx context.Context, driverID string, lat, lon float64, assignmentID *string) (*model.DriverLocation, error) {
	loc := &model.DriverLocation{
		ID:           uuid.NewString(),
		DriverID:     driverID,
		AssignmentID: assignmentID,
		Latitude:     lat,
		Longitude:    lon,
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO driver_locations (id, driver_id, assignment_id, latitude, longitude, timestamp)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING timestamp
	`, loc.ID, loc.DriverID, loc.AssignmentID, loc.Latitude, loc.Longitude).Scan(&loc.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert driver location: %w", err)
	}
	return loc, nil
}

// Latest returns the newest sample for driverID, or nil when the driver
// has never reported.
func (r *LocationRepository) Latest(ctx context.Context, driverID string) (*model.DriverLocation, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, driver_id, assignment_id, latitude, longitude, timestamp
		FROM driver_locations
		WHERE driver_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`, driverID)

	var loc model.DriverLocation
	err := row.Scan(&loc.ID, &loc.DriverID, &loc.AssignmentID, &loc.Latitude, &loc.Longitude, &loc.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest location: %w", err)
	}
	return &loc, nil
}

func (r *LocationRepository) History(ctx context.Context, driverID string, page, size int) ([]model.DriverLocation, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM driver_locations WHERE driver_id = $1`, driverID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count locations: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, driver_id, assignment_id, latitude, longitude, timestamp
		FROM driver_locations
		WHERE driver_id = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`, driverID, size, pagination.Offset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query location history: %w", err)
	}
	defer rows.Close()

	var locations []model.DriverLocation
	for rows.Next() {
		var loc model.DriverLocation
		if err := rows.Scan(&loc.ID, &loc.DriverID, &loc.AssignmentID, &loc.Latitude, &loc.Longitude, &loc.Timestamp); err != nil {
			return nil, 0, err
		}
		locations = append(locations, loc)
	}
	return locations, total, rows.Err()
}

// LatestSamples returns, per driver that has ever reported, the newest
// sample joined with its assignment, vehicle and report state. One
// read-only query; the classifier never locks rows.
func (r *LocationRepository) LatestSamples(ctx context.Context) (map[string]*model.LatestSample, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (dl.driver_id)
			dl.id, dl.driver_id, dl.assignment_id, dl.latitude, dl.longitude, dl.timestamp,
			v.name, v.plate_number,
			r.id, r.requester_name, r.requester_phone, r.transport_type, r.use_stretcher,
			r.pickup_address, r.destination_address, r.note, r.status
		FROM driver_locations dl
		LEFT JOIN assignments a ON a.id = dl.assignment_id
		LEFT JOIN vehicles v ON v.id = a.vehicle_id
		LEFT JOIN reports r ON r.id = a.report_id
		ORDER BY dl.driver_id, dl.timestamp DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest samples: %w", err)
	}
	defer rows.Close()

	samples := make(map[string]*model.LatestSample)
	for rows.Next() {
		var (
			s          model.LatestSample
			jobID      *string
			reqName    *string
			reqPhone   *string
			transport  *string
			stretcher  *bool
			pickup     *string
			dest       *string
			note       *string
			jobStatus  *string
		)
		err := rows.Scan(
			&s.Location.ID, &s.Location.DriverID, &s.Location.AssignmentID,
			&s.Location.Latitude, &s.Location.Longitude, &s.Location.Timestamp,
			&s.VehicleName, &s.VehiclePlate,
			&jobID, &reqName, &reqPhone, &transport, &stretcher,
			&pickup, &dest, &note, &jobStatus,
		)
		if err != nil {
			return nil, err
		}
		if jobID != nil {
			job := &model.JobSummary{ID: *jobID}
			if reqName != nil {
				job.RequesterName = *reqName
			}
			if reqPhone != nil {
				job.RequesterPhone = *reqPhone
			}
			if transport != nil {
				job.TransportType = *transport
			}
			if stretcher != nil {
				job.UseStretcher = *stretcher
			}
			if pickup != nil {
				job.PickupAddress = *pickup
			}
			if dest != nil {
				job.DestinationAddress = *dest
			}
			if note != nil {
				job.Notes = *note
			}
			if jobStatus != nil {
				job.Status = *jobStatus
			}
			s.Job = job
		}
		samples[s.Location.DriverID] = &s
	}
	return samples, rows.Err()
}
