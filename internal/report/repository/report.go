package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	asgmodel "medtransport/internal/assignment/model"
	"medtransport/internal/common/apperr"
	"medtransport/internal/common/db"
	"medtransport/internal/common/pagination"
	"medtransport/internal/report/model"
	vehiclerepo "medtransport/internal/vehicle/repository"
)

type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: pool}
}

const reportColumns = `
	r.id, r.requester_name, r.requester_phone,
	r.transport_type, COALESCE(vt.name, ''), r.use_stretcher,
	r.patient_name, r.patient_gender, r.patient_age, COALESCE(r.patient_history, ''),
	r.pickup_address, r.destination_address, r.schedule_date, r.schedule_time,
	r.contact_person_name, r.contact_person_phone,
	COALESCE(r.note, ''), COALESCE(r.attachment_ktp, ''), COALESCE(r.attachment_house_photo, ''), COALESCE(r.attachment_sharelok, ''),
	r.status, r.created_at, r.updated_at`

func scanReport(row pgx.Row) (*model.Report, error) {
	var rep model.Report
	err := row.Scan(
		&rep.ID, &rep.RequesterName, &rep.RequesterPhone,
		&rep.TransportType, &rep.TransportTypeName, &rep.UseStretcher,
		&rep.PatientName, &rep.PatientGender, &rep.PatientAge, &rep.PatientHistory,
		&rep.PickupAddress, &rep.DestinationAddress, &rep.ScheduleDate, &rep.ScheduleTime,
		&rep.ContactPersonName, &rep.ContactPersonPhone,
		&rep.Note, &rep.AttachmentKTP, &rep.AttachmentHousePhoto, &rep.AttachmentShareloc,
		&rep.Status, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepository) Create(ctx context.Context, rep *model.Report) (*model.Report, error) {
	var typeExists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vehicle_types WHERE id = $1)`, rep.TransportType).Scan(&typeExists)
	if err != nil {
		return nil, fmt.Errorf("failed to check transport type: %w", err)
	}
	if !typeExists {
		return nil, apperr.NotFound("transport type %s not found", rep.TransportType)
	}

	id := uuid.NewString()
	_, err = r.db.Exec(ctx, `
		INSERT INTO reports (
			id, requester_name, requester_phone, transport_type, use_stretcher,
			patient_name, patient_gender, patient_age, patient_history,
			pickup_address, destination_address, schedule_date, schedule_time,
			contact_person_name, contact_person_phone,
			note, attachment_ktp, attachment_house_photo, attachment_sharelok, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`,
		id, rep.RequesterName, rep.RequesterPhone, rep.TransportType, rep.UseStretcher,
		rep.PatientName, rep.PatientGender, rep.PatientAge, rep.PatientHistory,
		rep.PickupAddress, rep.DestinationAddress, rep.ScheduleDate, rep.ScheduleTime,
		rep.ContactPersonName, rep.ContactPersonPhone,
		rep.Note, rep.AttachmentKTP, rep.AttachmentHousePhoto, rep.AttachmentShareloc,
		model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+reportColumns+`
		FROM reports r
		LEFT JOIN vehicle_types vt ON vt.id = r.transport_type
		WHERE r.id = $1
	`, id)

	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("report %s not found", id)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rep, nil
}

func (r *ReportRepository) List(ctx context.Context, page, size int) ([]model.Report, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+reportColumns+`
		FROM reports r
		LEFT JOIN vehicle_types vt ON vt.id = r.transport_type
		ORDER BY r.created_at DESC
		LIMIT $1 OFFSET $2
	`, size, pagination.Offset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, *rep)
	}
	return reports, total, rows.Err()
}

// UpdateStatus is the status-synchronization write path: the report
// status change, the derived assignment transition and any vehicle
// release commit or roll back together.
func (r *ReportRepository) UpdateStatus(ctx context.Context, reportID string, status model.Status) (*model.Report, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current model.Status
	err = tx.QueryRow(ctx, `SELECT status FROM reports WHERE id = $1 FOR UPDATE`, reportID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("report %s not found", reportID)
		}
		return nil, fmt.Errorf("failed to lock report: %w", err)
	}

	if current.Terminal() && status != current {
		return nil, apperr.InvalidState("report is already %s", current)
	}

	_, err = tx.Exec(ctx, `UPDATE reports SET status = $1, updated_at = now() WHERE id = $2`, status, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	if err := syncAssignment(ctx, tx, reportID, status); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return r.GetByID(ctx, reportID)
}

// syncAssignment applies the derived transition to the report's live
// assignment, if one exists. A report without an assignment transitions
// on its own.
func syncAssignment(ctx context.Context, q db.Querier, reportID string, status model.Status) error {
	var (
		assignmentID string
		vehicleID    *string
	)
	err := q.QueryRow(ctx, `
		SELECT id, vehicle_id FROM assignments
		WHERE report_id = $1 AND status NOT IN ($2, $3)
		FOR UPDATE
	`, reportID, asgmodel.StatusCompleted, asgmodel.StatusCancelled).Scan(&assignmentID, &vehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to lock assignment: %w", err)
	}

	next := asgmodel.StatusForReport(status)

	var completedAt *time.Time
	if next == asgmodel.StatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}
	_, err = q.Exec(ctx, `
		UPDATE assignments SET status = $1, completed_at = $2, updated_at = now() WHERE id = $3
	`, next, completedAt, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to update assignment status: %w", err)
	}

	// A terminal assignment must not keep its vehicle claimed.
	if next.Terminal() && vehicleID != nil {
		if err := vehiclerepo.Release(ctx, q, *vehicleID); err != nil {
			return err
		}
	}
	return nil
}
