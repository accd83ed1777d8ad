package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/logger"
	"medtransport/internal/common/metrics"
	"medtransport/internal/events"
	"medtransport/internal/report/model"
)

// ReportRepository is the persistence port. UpdateStatus must apply the
// report write and the derived assignment/vehicle effects as one atomic
// unit.
type ReportRepository interface {
	Create(ctx context.Context, rep *model.Report) (*model.Report, error)
	GetByID(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, page, size int) ([]model.Report, int, error)
	UpdateStatus(ctx context.Context, reportID string, status model.Status) (*model.Report, error)
}

// Broadcaster pushes a frame to connected dashboard clients.
type Broadcaster interface {
	Broadcast(message []byte)
}

// ReportService fronts report reads and is the only entry point allowed
// to change a report's status.
type ReportService struct {
	repo    ReportRepository
	events  events.Publisher
	hub     Broadcaster
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewReportService(repo ReportRepository, pub events.Publisher, hub Broadcaster, m *metrics.Metrics) *ReportService {
	return &ReportService{
		repo:    repo,
		events:  pub,
		hub:     hub,
		metrics: m,
		log:     logger.New("report-service"),
	}
}

func (s *ReportService) Create(ctx context.Context, actor auth.Actor, rep *model.Report) (*model.Report, error) {
	if rep.RequesterName == "" || rep.RequesterPhone == "" {
		return nil, apperr.InvalidInput("requester name and phone are required")
	}
	if rep.TransportType == "" {
		return nil, apperr.InvalidInput("transport_type is required")
	}
	return s.repo.Create(ctx, rep)
}

func (s *ReportService) Get(ctx context.Context, actor auth.Actor, id string) (*model.Report, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ReportService) List(ctx context.Context, actor auth.Actor, page, size int) ([]model.Report, int, error) {
	return s.repo.List(ctx, page, size)
}

// SetStatus validates and applies a status transition, then notifies
// event and dashboard consumers. Notification failures are logged, never
// surfaced: the transition has already committed.
func (s *ReportService) SetStatus(ctx context.Context, actor auth.Actor, reportID, status string) (*model.Report, error) {
	next := model.Status(status)
	if !next.Valid() {
		return nil, apperr.InvalidInput("invalid status %q", status)
	}

	rep, err := s.repo.UpdateStatus(ctx, reportID, next)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(next)).Inc()
	}
	s.log.Info().Str("report_id", reportID).Str("status", string(next)).Msg("report status updated")

	if s.events != nil {
		msg := events.ReportStatusChanged{
			ReportID:   rep.ID,
			Status:     string(rep.Status),
			OccurredAt: time.Now().UTC(),
		}
		if err := s.events.PublishStatusChanged(ctx, msg); err != nil {
			s.log.Warn().Err(err).Str("report_id", reportID).Msg("failed to publish status event")
		}
	}
	if s.hub != nil {
		frame, err := json.Marshal(map[string]any{
			"type": "status_update",
			"data": rep,
		})
		if err == nil {
			s.hub.Broadcast(frame)
		}
	}
	return rep, nil
}
