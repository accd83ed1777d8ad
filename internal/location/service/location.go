package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/config"
	"medtransport/internal/common/logger"
	"medtransport/internal/common/metrics"
	"medtransport/internal/events"
	"medtransport/internal/location/model"
	reportmodel "medtransport/internal/report/model"
	usermodel "medtransport/internal/user/model"
)

// LocationRepository is the append-only persistence port.
type LocationRepository interface {
	Insert(ctx context.Context, driverID string, lat, lon float64, assignmentID *string) (*model.DriverLocation, error)
	Latest(ctx context.Context, driverID string) (*model.DriverLocation, error)
	History(ctx context.Context, driverID string, page, size int) ([]model.DriverLocation, int, error)
	LatestSamples(ctx context.Context) (map[string]*model.LatestSample, error)
}

// UserDirectory resolves drivers and the full roster.
type UserDirectory interface {
	GetDriver(ctx context.Context, id string) (*usermodel.User, error)
	ListDrivers(ctx context.Context) ([]usermodel.User, error)
}

// Broadcaster pushes a frame to connected dashboard clients.
type Broadcaster interface {
	Broadcast(message []byte)
}

// LatestView is a single driver's newest sample with the driver name
// resolved.
type LatestView struct {
	model.DriverLocation
	DriverName string `json:"driver_name"`
}

// LocationService ingests position samples and derives the per-driver
// presence classification. Classification is read-only: stale assignment
// references are corrected in the emitted record, never in storage.
type LocationService struct {
	repo     LocationRepository
	users    UserDirectory
	events   events.Publisher
	hub      Broadcaster
	metrics  *metrics.Metrics
	presence config.PresenceConfig
	log      zerolog.Logger
}

func NewLocationService(repo LocationRepository, users UserDirectory, pub events.Publisher, hub Broadcaster, m *metrics.Metrics, presence config.PresenceConfig) *LocationService {
	return &LocationService{
		repo:     repo,
		users:    users,
		events:   pub,
		hub:      hub,
		metrics:  m,
		presence: presence,
		log:      logger.New("location-service"),
	}
}

// Record appends a location sample. Every accepted call produces a new
// row; nothing is deduplicated.
func (s *LocationService) Record(ctx context.Context, actor auth.Actor, driverID string, lat, lon float64, assignmentID *string) (*model.DriverLocation, error) {
	if actor.IsDriver() && actor.ID != driverID {
		return nil, apperr.Forbidden("drivers may only record their own location")
	}
	if lat < -90 || lat > 90 {
		return nil, apperr.InvalidInput("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return nil, apperr.InvalidInput("longitude must be between -180 and 180")
	}
	if _, err := s.users.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}

	loc, err := s.repo.Insert(ctx, driverID, lat, lon, assignmentID)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.LocationsRecorded.Inc()
	}
	if s.events != nil {
		msg := events.LocationRecorded{
			LocationID:   loc.ID,
			DriverID:     loc.DriverID,
			AssignmentID: loc.AssignmentID,
			Latitude:     loc.Latitude,
			Longitude:    loc.Longitude,
			Timestamp:    loc.Timestamp,
		}
		if err := s.events.PublishLocationRecorded(ctx, msg); err != nil {
			s.log.Warn().Err(err).Str("driver_id", driverID).Msg("failed to publish location event")
		}
	}
	if s.hub != nil {
		frame, err := json.Marshal(map[string]any{
			"type": "location_update",
			"data": loc,
		})
		if err == nil {
			s.hub.Broadcast(frame)
		}
	}
	return loc, nil
}

// Latest returns the newest sample for a driver, or NotFound when the
// driver has never reported.
func (s *LocationService) Latest(ctx context.Context, actor auth.Actor, driverID string) (*LatestView, error) {
	if actor.IsDriver() && actor.ID != driverID {
		return nil, apperr.Forbidden("drivers may only view their own location")
	}
	driver, err := s.users.GetDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	loc, err := s.repo.Latest(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, apperr.NotFound("no location recorded for driver %s", driverID)
	}
	return &LatestView{DriverLocation: *loc, DriverName: driver.Name}, nil
}

func (s *LocationService) History(ctx context.Context, actor auth.Actor, driverID string, page, size int) ([]model.DriverLocation, int, error) {
	if actor.IsDriver() && actor.ID != driverID {
		return nil, 0, apperr.Forbidden("drivers may only view their own location history")
	}
	if !actor.IsDriver() && !actor.IsAdmin() {
		return nil, 0, apperr.Forbidden("only admins and drivers may view location history")
	}
	if _, err := s.users.GetDriver(ctx, driverID); err != nil {
		return nil, 0, err
	}
	return s.repo.History(ctx, driverID, page, size)
}

// Snapshot classifies every driver in the roster, including drivers that
// have never reported a location.
func (s *LocationService) Snapshot(ctx context.Context, actor auth.Actor) ([]model.PresenceRecord, error) {
	if !actor.IsAdmin() && !actor.IsReporter() {
		return nil, apperr.Forbidden("only admins and reporters may view the presence snapshot")
	}

	drivers, err := s.users.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	samples, err := s.repo.LatestSamples(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]model.PresenceRecord, 0, len(drivers))
	for _, driver := range drivers {
		records = append(records, s.classify(driver, samples[driver.ID]))
	}
	return records, nil
}

// classify derives one driver's duty state from their newest sample. A
// sample pointing at a finished job still marks the driver idle: duty
// reflects live work, not where the driver happens to be parked.
func (s *LocationService) classify(driver usermodel.User, sample *model.LatestSample) model.PresenceRecord {
	if sample == nil {
		return model.PresenceRecord{
			ID:          "no-location-" + driver.ID,
			DriverID:    driver.ID,
			DriverName:  driver.Name,
			Latitude:    s.presence.DefaultLatitude,
			Longitude:   s.presence.DefaultLongitude,
			Timestamp:   time.Now().UTC(),
			HasLocation: false,
			OnDuty:      false,
			Status:      "no_location",
		}
	}

	rec := model.PresenceRecord{
		ID:           sample.Location.ID,
		DriverID:     driver.ID,
		DriverName:   driver.Name,
		Latitude:     sample.Location.Latitude,
		Longitude:    sample.Location.Longitude,
		Timestamp:    sample.Location.Timestamp,
		AssignmentID: sample.Location.AssignmentID,
		HasLocation:  true,
	}

	if sample.Location.AssignmentID == nil {
		return rec
	}
	if sample.Job == nil || reportmodel.Status(sample.Job.Status).Terminal() {
		// Stale reference: the job is gone or finished. Idle, with the
		// assignment cleared from the emitted record only.
		rec.AssignmentID = nil
		return rec
	}

	rec.OnDuty = true
	rec.VehicleName = sample.VehicleName
	rec.VehicleLicensePlate = sample.VehiclePlate
	rec.Report = sample.Job
	return rec
}
