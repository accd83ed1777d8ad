package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/config"
	"medtransport/internal/events"
	"medtransport/internal/location/model"
	usermodel "medtransport/internal/user/model"
)

type fakeLocationRepo struct {
	rows    []model.DriverLocation
	samples map[string]*model.LatestSample
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{samples: make(map[string]*model.LatestSample)}
}

func (f *fakeLocationRepo) Insert(_ context.Context, driverID string, lat, lon float64, assignmentID *string) (*model.DriverLocation, error) {
	loc := model.DriverLocation{
		ID:           "loc-" + driverID,
		DriverID:     driverID,
		AssignmentID: assignmentID,
		Latitude:     lat,
		Longitude:    lon,
		Timestamp:    time.Now().UTC(),
	}
	f.rows = append(f.rows, loc)
	return &loc, nil
}

func (f *fakeLocationRepo) Latest(_ context.Context, driverID string) (*model.DriverLocation, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].DriverID == driverID {
			return &f.rows[i], nil
		}
	}
	return nil, nil
}

func (f *fakeLocationRepo) History(_ context.Context, driverID string, page, size int) ([]model.DriverLocation, int, error) {
	var out []model.DriverLocation
	for _, loc := range f.rows {
		if loc.DriverID == driverID {
			out = append(out, loc)
		}
	}
	return out, len(out), nil
}

func (f *fakeLocationRepo) LatestSamples(_ context.Context) (map[string]*model.LatestSample, error) {
	return f.samples, nil
}

type fakeUsers struct {
	users map[string]usermodel.User
}

func newFakeUsers(ids ...string) *fakeUsers {
	f := &fakeUsers{users: make(map[string]usermodel.User)}
	for _, id := range ids {
		f.users[id] = usermodel.User{ID: id, Name: "Driver " + id, Role: auth.RoleDriver}
	}
	return f
}

func (f *fakeUsers) GetDriver(_ context.Context, id string) (*usermodel.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("driver %s not found", id)
	}
	return &u, nil
}

func (f *fakeUsers) ListDrivers(_ context.Context) ([]usermodel.User, error) {
	var out []usermodel.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakePublisher struct {
	locationEvents []events.LocationRecorded
}

func (f *fakePublisher) PublishStatusChanged(_ context.Context, _ events.ReportStatusChanged) error {
	return nil
}

func (f *fakePublisher) PublishLocationRecorded(_ context.Context, msg events.LocationRecorded) error {
	f.locationEvents = append(f.locationEvents, msg)
	return nil
}

type fakeHub struct {
	frames [][]byte
}

func (f *fakeHub) Broadcast(message []byte) {
	f.frames = append(f.frames, message)
}

var presence = config.PresenceConfig{DefaultLatitude: -6.2088, DefaultLongitude: 106.8456}

func str(s string) *string { return &s }

func TestRecordOwnOnly(t *testing.T) {
	svc := NewLocationService(newFakeLocationRepo(), newFakeUsers("drv-1"), nil, nil, nil, presence)
	other := auth.Actor{ID: "drv-2", Role: auth.RoleDriver}

	_, err := svc.Record(context.Background(), other, "drv-1", -6.2, 106.8, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestRecordValidatesCoordinates(t *testing.T) {
	svc := NewLocationService(newFakeLocationRepo(), newFakeUsers("drv-1"), nil, nil, nil, presence)
	actor := auth.Actor{ID: "drv-1", Role: auth.RoleDriver}

	_, err := svc.Record(context.Background(), actor, "drv-1", 91, 0, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	_, err = svc.Record(context.Background(), actor, "drv-1", 0, -181, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}

func TestRecordUnknownDriver(t *testing.T) {
	svc := NewLocationService(newFakeLocationRepo(), newFakeUsers(), nil, nil, nil, presence)
	admin := auth.Actor{ID: "adm-1", Role: auth.RoleAdmin}

	_, err := svc.Record(context.Background(), admin, "ghost", -6.2, 106.8, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRecordAppendsEveryPing(t *testing.T) {
	repo := newFakeLocationRepo()
	pub := &fakePublisher{}
	hub := &fakeHub{}
	svc := NewLocationService(repo, newFakeUsers("drv-1"), pub, hub, nil, presence)
	actor := auth.Actor{ID: "drv-1", Role: auth.RoleDriver}

	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), actor, "drv-1", -6.2, 106.8, nil)
		require.NoError(t, err)
	}

	assert.Len(t, repo.rows, 3)
	assert.Len(t, pub.locationEvents, 3)
	require.Len(t, hub.frames, 3)
	assert.Contains(t, string(hub.frames[0]), "location_update")
}

func TestLatestNoSample(t *testing.T) {
	svc := NewLocationService(newFakeLocationRepo(), newFakeUsers("drv-1"), nil, nil, nil, presence)
	admin := auth.Actor{ID: "adm-1", Role: auth.RoleAdmin}

	_, err := svc.Latest(context.Background(), admin, "drv-1")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestLatestResolvesDriverName(t *testing.T) {
	repo := newFakeLocationRepo()
	svc := NewLocationService(repo, newFakeUsers("drv-1"), nil, nil, nil, presence)
	actor := auth.Actor{ID: "drv-1", Role: auth.RoleDriver}

	_, err := svc.Record(context.Background(), actor, "drv-1", -6.2, 106.8, nil)
	require.NoError(t, err)

	view, err := svc.Latest(context.Background(), actor, "drv-1")
	require.NoError(t, err)
	assert.Equal(t, "Driver drv-1", view.DriverName)
	assert.Equal(t, -6.2, view.Latitude)
}

func TestSnapshotRequiresDispatcherRole(t *testing.T) {
	svc := NewLocationService(newFakeLocationRepo(), newFakeUsers("drv-1"), nil, nil, nil, presence)
	driver := auth.Actor{ID: "drv-1", Role: auth.RoleDriver}

	_, err := svc.Snapshot(context.Background(), driver)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestSnapshotPlaceholderForSilentDriver(t *testing.T) {
	svc := NewLocationService(newFakeLocationRepo(), newFakeUsers("drv-1"), nil, nil, nil, presence)
	admin := auth.Actor{ID: "adm-1", Role: auth.RoleAdmin}

	records, err := svc.Snapshot(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "no-location-drv-1", rec.ID)
	assert.Equal(t, "no_location", rec.Status)
	assert.False(t, rec.HasLocation)
	assert.False(t, rec.OnDuty)
	assert.Equal(t, presence.DefaultLatitude, rec.Latitude)
	assert.Equal(t, presence.DefaultLongitude, rec.Longitude)
}

func TestSnapshotIdleWithoutAssignment(t *testing.T) {
	repo := newFakeLocationRepo()
	repo.samples["drv-1"] = &model.LatestSample{
		Location: model.DriverLocation{ID: "loc-1", DriverID: "drv-1", Latitude: -6.2, Longitude: 106.8, Timestamp: time.Now()},
	}
	svc := NewLocationService(repo, newFakeUsers("drv-1"), nil, nil, nil, presence)
	admin := auth.Actor{ID: "adm-1", Role: auth.RoleAdmin}

	records, err := svc.Snapshot(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.HasLocation)
	assert.False(t, rec.OnDuty)
	assert.Nil(t, rec.AssignmentID)
	assert.Nil(t, rec.Report)
}

func TestSnapshotOnDutyWithLiveJob(t *testing.T) {
	repo := newFakeLocationRepo()
	repo.samples["drv-1"] = &model.LatestSample{
		Location: model.DriverLocation{
			ID: "loc-1", DriverID: "drv-1", AssignmentID: str("asg-1"),
			Latitude: -6.2, Longitude: 106.8, Timestamp: time.Now(),
		},
		VehicleName:  str("Ambulans 01"),
		VehiclePlate: str("B 1234 XYZ"),
		Job:          &model.JobSummary{ID: "rep-1", Status: "on_way"},
	}
	svc := NewLocationService(repo, newFakeUsers("drv-1"), nil, nil, nil, presence)
	admin := auth.Actor{ID: "adm-1", Role: auth.RoleAdmin}

	records, err := svc.Snapshot(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, rec.OnDuty)
	require.NotNil(t, rec.AssignmentID)
	assert.Equal(t, "asg-1", *rec.AssignmentID)
	require.NotNil(t, rec.VehicleName)
	assert.Equal(t, "Ambulans 01", *rec.VehicleName)
	require.NotNil(t, rec.Report)
	assert.Equal(t, "rep-1", rec.Report.ID)
}

func TestSnapshotStaleJobReadsAsIdle(t *testing.T) {
	repo := newFakeLocationRepo()
	repo.samples["drv-1"] = &model.LatestSample{
		Location: model.DriverLocation{
			ID: "loc-1", DriverID: "drv-1", AssignmentID: str("asg-1"),
			Latitude: -6.2, Longitude: 106.8, Timestamp: time.Now(),
		},
		Job: &model.JobSummary{ID: "rep-1", Status: "done"},
	}
	repo.samples["drv-2"] = &model.LatestSample{
		Location: model.DriverLocation{
			ID: "loc-2", DriverID: "drv-2", AssignmentID: str("asg-gone"),
			Latitude: -6.3, Longitude: 106.9, Timestamp: time.Now(),
		},
	}
	svc := NewLocationService(repo, newFakeUsers("drv-1", "drv-2"), nil, nil, nil, presence)
	admin := auth.Actor{ID: "adm-1", Role: auth.RoleAdmin}

	records, err := svc.Snapshot(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, rec := range records {
		assert.True(t, rec.HasLocation)
		assert.False(t, rec.OnDuty)
		assert.Nil(t, rec.AssignmentID, "stale assignment must be cleared for %s", rec.DriverID)
		assert.Nil(t, rec.Report)
	}
}

func TestHistoryRoles(t *testing.T) {
	svc := NewLocationService(newFakeLocationRepo(), newFakeUsers("drv-1"), nil, nil, nil, presence)

	reporter := auth.Actor{ID: "rpt-1", Role: auth.RoleReporter}
	_, _, err := svc.History(context.Background(), reporter, "drv-1", 1, 10)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	other := auth.Actor{ID: "drv-2", Role: auth.RoleDriver}
	_, _, err = svc.History(context.Background(), other, "drv-1", 1, 10)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	admin := auth.Actor{ID: "adm-1", Role: auth.RoleAdmin}
	_, _, err = svc.History(context.Background(), admin, "drv-1", 1, 10)
	require.NoError(t, err)
}
