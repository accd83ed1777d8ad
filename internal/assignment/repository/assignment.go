package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medtransport/internal/assignment/model"
	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/db"
	"medtransport/internal/common/pagination"
	reportmodel "medtransport/internal/report/model"
	vehiclerepo "medtransport/internal/vehicle/repository"
)

type AssignmentRepository struct {
	db *pgxpool.Pool
}

func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: pool}
}

// UpdateParams carries the mutable assignment fields; nil means leave
// unchanged.
type UpdateParams struct {
	VehicleID                *string
	DriverID                 *string
	CoffinChecklistConfirmed *bool
}

// Create binds a driver to a pending report. The insert and the report
// transition to assigned commit together.
func (r *AssignmentRepository) Create(ctx context.Context, reportID, driverID string) (*model.View, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var reportStatus reportmodel.Status
	err = tx.QueryRow(ctx, `SELECT status FROM reports WHERE id = $1 FOR UPDATE`, reportID).Scan(&reportStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("report %s not found", reportID)
		}
		return nil, fmt.Errorf("failed to lock report: %w", err)
	}

	if err := checkDriverRole(ctx, tx, driverID); err != nil {
		return nil, err
	}

	var existingID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM assignments
		WHERE report_id = $1 AND status NOT IN ($2, $3)
	`, reportID, model.StatusCompleted, model.StatusCancelled).Scan(&existingID)
	if err == nil {
		return nil, apperr.Conflict("report %s already has a live assignment", reportID)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}

	id := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO assignments (id, report_id, driver_id, status, assigned_at)
		VALUES ($1, $2, $3, $4, now())
	`, id, reportID, driverID, model.StatusAssigned)
	if err != nil {
		return nil, fmt.Errorf("failed to insert assignment: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE reports SET status = $1, updated_at = now() WHERE id = $2`,
		reportmodel.StatusAssigned, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update applies a vehicle attach/replace, a driver reassignment and a
// checklist flag change in one transaction. The vehicle swap claims the
// replacement before releasing the old unit, so a vehicle is never
// released without its replacement secured.
func (r *AssignmentRepository) Update(ctx context.Context, id string, p UpdateParams) (*model.View, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		status       model.Status
		oldVehicleID *string
	)
	err = tx.QueryRow(ctx, `SELECT status, vehicle_id FROM assignments WHERE id = $1 FOR UPDATE`, id).
		Scan(&status, &oldVehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("assignment %s not found", id)
		}
		return nil, fmt.Errorf("failed to lock assignment: %w", err)
	}

	if p.VehicleID != nil && (oldVehicleID == nil || *p.VehicleID != *oldVehicleID) {
		if status.Terminal() {
			return nil, apperr.InvalidState("assignment is already %s", status)
		}
		if err := vehiclerepo.Claim(ctx, tx, *p.VehicleID); err != nil {
			return nil, err
		}
		if oldVehicleID != nil {
			if err := vehiclerepo.Release(ctx, tx, *oldVehicleID); err != nil {
				return nil, err
			}
		}
		_, err = tx.Exec(ctx, `UPDATE assignments SET vehicle_id = $1, updated_at = now() WHERE id = $2`,
			*p.VehicleID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to update assignment vehicle: %w", err)
		}
	}

	if p.DriverID != nil {
		if status.Terminal() {
			return nil, apperr.InvalidState("assignment is already %s", status)
		}
		if err := checkDriverRole(ctx, tx, *p.DriverID); err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx, `UPDATE assignments SET driver_id = $1, updated_at = now() WHERE id = $2`,
			*p.DriverID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to update assignment driver: %w", err)
		}
	}

	// The checklist flag is settable in any state; whether it gates
	// completion of mortuary jobs is the caller's policy.
	if p.CoffinChecklistConfirmed != nil {
		_, err = tx.Exec(ctx, `UPDATE assignments SET coffin_checklist_confirmed = $1, updated_at = now() WHERE id = $2`,
			*p.CoffinChecklistConfirmed, id)
		if err != nil {
			return nil, fmt.Errorf("failed to update coffin checklist: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Delete is the manual undo path: the vehicle goes back to available and
// the owning report back to pending, regardless of prior state.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		reportID  string
		vehicleID *string
	)
	err = tx.QueryRow(ctx, `SELECT report_id, vehicle_id FROM assignments WHERE id = $1 FOR UPDATE`, id).
		Scan(&reportID, &vehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("assignment %s not found", id)
		}
		return fmt.Errorf("failed to lock assignment: %w", err)
	}

	if vehicleID != nil {
		if err := vehiclerepo.Release(ctx, tx, *vehicleID); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `UPDATE reports SET status = $1, updated_at = now() WHERE id = $2`,
		reportmodel.StatusPending, reportID)
	if err != nil {
		return fmt.Errorf("failed to reset report status: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const viewColumns = `
	a.id, a.report_id, a.driver_id, a.vehicle_id, a.status, a.coffin_checklist_confirmed,
	a.assigned_at, a.completed_at, a.updated_at,
	u.name, v.plate_number,
	vt.name, r.schedule_date::text, r.schedule_time, r.requester_name, r.requester_phone, r.status`

const viewJoins = `
	FROM assignments a
	LEFT JOIN users u ON u.id = a.driver_id
	LEFT JOIN vehicles v ON v.id = a.vehicle_id
	LEFT JOIN reports r ON r.id = a.report_id
	LEFT JOIN vehicle_types vt ON vt.id = r.transport_type`

func scanView(row pgx.Row) (*model.View, error) {
	var (
		view           model.View
		reqName        *string
		reqPhone       *string
		reportStatus   *string
		transportName  *string
		scheduleDate   *string
		scheduleTime   *string
	)
	err := row.Scan(
		&view.ID, &view.ReportID, &view.DriverID, &view.VehicleID, &view.Status, &view.CoffinChecklistConfirmed,
		&view.AssignedAt, &view.CompletedAt, &view.UpdatedAt,
		&view.DriverName, &view.VehiclePlate,
		&transportName, &scheduleDate, &scheduleTime, &reqName, &reqPhone, &reportStatus,
	)
	if err != nil {
		return nil, err
	}
	if reportStatus != nil {
		summary := &model.ReportSummary{
			TransportTypeName: transportName,
			ScheduleDate:      scheduleDate,
			ScheduleTime:      scheduleTime,
			Status:            *reportStatus,
		}
		if reqName != nil {
			summary.RequesterName = *reqName
		}
		if reqPhone != nil {
			summary.RequesterPhone = *reqPhone
		}
		view.Report = summary
	}
	return &view, nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*model.View, error) {
	row := r.db.QueryRow(ctx, `SELECT `+viewColumns+viewJoins+` WHERE a.id = $1`, id)
	view, err := scanView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("assignment %s not found", id)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return view, nil
}

func (r *AssignmentRepository) List(ctx context.Context, page, size int) ([]model.View, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM assignments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+viewColumns+viewJoins+` ORDER BY a.assigned_at DESC LIMIT $1 OFFSET $2`,
		size, pagination.Offset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	return collectViews(rows, total)
}

func (r *AssignmentRepository) ListByDriver(ctx context.Context, driverID string, page, size int) ([]model.View, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM assignments WHERE driver_id = $1`, driverID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+viewColumns+viewJoins+` WHERE a.driver_id = $1 ORDER BY a.assigned_at DESC LIMIT $2 OFFSET $3`,
		driverID, size, pagination.Offset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list driver assignments: %w", err)
	}
	defer rows.Close()

	return collectViews(rows, total)
}

func collectViews(rows pgx.Rows, total int) ([]model.View, int, error) {
	var views []model.View
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, total, rows.Err()
}

// ReconcileStatuses re-derives every assignment's status from its owning
// report. It exists for recovery after out-of-band edits; the live path
// keeps the two in lockstep on its own.
func (r *AssignmentRepository) ReconcileStatuses(ctx context.Context) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT a.id, a.status, a.completed_at, r.status
		FROM assignments a
		JOIN reports r ON r.id = a.report_id
		FOR UPDATE OF a
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to query assignments: %w", err)
	}

	type fix struct {
		id          string
		status      model.Status
		completedAt *time.Time
	}
	var fixes []fix
	for rows.Next() {
		var (
			id           string
			cur          model.Status
			completedAt  *time.Time
			reportStatus reportmodel.Status
		)
		if err := rows.Scan(&id, &cur, &completedAt, &reportStatus); err != nil {
			rows.Close()
			return 0, err
		}
		want := model.StatusForReport(reportStatus)
		if want == cur {
			continue
		}
		if want == model.StatusCompleted && completedAt == nil {
			now := time.Now().UTC()
			completedAt = &now
		}
		fixes = append(fixes, fix{id: id, status: want, completedAt: completedAt})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, f := range fixes {
		_, err := tx.Exec(ctx, `UPDATE assignments SET status = $1, completed_at = $2, updated_at = now() WHERE id = $3`,
			f.status, f.completedAt, f.id)
		if err != nil {
			return 0, fmt.Errorf("failed to reconcile assignment %s: %w", f.id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(fixes), nil
}

func checkDriverRole(ctx context.Context, q db.Querier, driverID string) error {
	var role string
	err := q.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, driverID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("driver %s not found", driverID)
		}
		return fmt.Errorf("failed to get user role: %w", err)
	}
	if role != auth.RoleDriver {
		return apperr.InvalidState("user %s is not a driver", driverID)
	}
	return nil
}
