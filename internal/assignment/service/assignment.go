package service

import (
	"context"

	"github.com/rs/zerolog"

	"medtransport/internal/assignment/model"
	"medtransport/internal/assignment/repository"
	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/logger"
	"medtransport/internal/common/metrics"
)

// AssignmentRepository is the persistence port. Every write method is a
// single transaction over the assignment, its report and any vehicle it
// touches.
type AssignmentRepository interface {
	Create(ctx context.Context, reportID, driverID string) (*model.View, error)
	Update(ctx context.Context, id string, p repository.UpdateParams) (*model.View, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.View, error)
	List(ctx context.Context, page, size int) ([]model.View, int, error)
	ListByDriver(ctx context.Context, driverID string, page, size int) ([]model.View, int, error)
	ReconcileStatuses(ctx context.Context) (int, error)
}

// UpdateRequest is the caller-facing mutation: attach or replace a
// vehicle, reassign the driver, or confirm the coffin checklist.
type UpdateRequest struct {
	VehicleID                *string `json:"vehicle_id"`
	DriverID                 *string `json:"driver_id"`
	CoffinChecklistConfirmed *bool   `json:"coffin_checklist_confirmed"`
}

type AssignmentService struct {
	repo    AssignmentRepository
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewAssignmentService(repo AssignmentRepository, m *metrics.Metrics) *AssignmentService {
	return &AssignmentService{
		repo:    repo,
		metrics: m,
		log:     logger.New("assignment-service"),
	}
}

func (s *AssignmentService) Create(ctx context.Context, actor auth.Actor, reportID, driverID string) (*model.View, error) {
	if !actor.IsAdmin() && !actor.IsReporter() {
		return nil, apperr.Forbidden("only admins and reporters may create assignments")
	}
	if reportID == "" || driverID == "" {
		return nil, apperr.InvalidInput("report_id and driver_id are required")
	}

	view, err := s.repo.Create(ctx, reportID, driverID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("assignment_id", view.ID).Str("report_id", reportID).Str("driver_id", driverID).
		Msg("assignment created")
	return view, nil
}

// Update enforces the ownership policy: admins may change anything,
// the assigned driver may only pick a vehicle for their own job and
// confirm its checklist.
func (s *AssignmentService) Update(ctx context.Context, actor auth.Actor, id string, req UpdateRequest) (*model.View, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwn := actor.IsDriver() && current.DriverID == actor.ID
	if !actor.IsAdmin() && !isOwn {
		return nil, apperr.Forbidden("only admins or the assigned driver may update this assignment")
	}

	params := repository.UpdateParams{
		VehicleID:                req.VehicleID,
		CoffinChecklistConfirmed: req.CoffinChecklistConfirmed,
	}
	if req.DriverID != nil {
		if !actor.IsAdmin() {
			return nil, apperr.Forbidden("only admins may reassign a driver")
		}
		params.DriverID = req.DriverID
	}

	view, err := s.repo.Update(ctx, id, params)
	if err != nil {
		if s.metrics != nil && apperr.IsKind(err, apperr.KindConflict) {
			s.metrics.ClaimConflicts.Inc()
		}
		return nil, err
	}
	return view, nil
}

func (s *AssignmentService) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins may delete assignments")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("assignment_id", id).Msg("assignment deleted, report reset to pending")
	return nil
}

func (s *AssignmentService) Get(ctx context.Context, actor auth.Actor, id string) (*model.View, error) {
	view, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsDriver() && view.DriverID != actor.ID {
		return nil, apperr.Forbidden("drivers may only view their own assignments")
	}
	return view, nil
}

func (s *AssignmentService) List(ctx context.Context, actor auth.Actor, page, size int) ([]model.View, int, error) {
	if !actor.IsAdmin() && !actor.IsReporter() {
		return nil, 0, apperr.Forbidden("only admins and reporters may list all assignments")
	}
	return s.repo.List(ctx, page, size)
}

func (s *AssignmentService) ListByDriver(ctx context.Context, actor auth.Actor, driverID string, page, size int) ([]model.View, int, error) {
	if actor.IsDriver() && actor.ID != driverID {
		return nil, 0, apperr.Forbidden("drivers may only view their own assignments")
	}
	return s.repo.ListByDriver(ctx, driverID, page, size)
}

// Reconcile re-derives assignment statuses from report statuses. Used by
// the sync-status command after out-of-band data edits.
func (s *AssignmentService) Reconcile(ctx context.Context) (int, error) {
	n, err := s.repo.ReconcileStatuses(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int("updated", n).Msg("assignment statuses reconciled")
	}
	return n, nil
}
