package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medtransport/internal/common/apperr"
	"medtransport/internal/common/auth"
	"medtransport/internal/events"
	"medtransport/internal/report/model"
)

type fakeReportRepo struct {
	reports map[string]*model.Report
	updates []model.Status
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[string]*model.Report)}
}

func (f *fakeReportRepo) Create(_ context.Context, rep *model.Report) (*model.Report, error) {
	rep.ID = "rep-1"
	rep.Status = model.StatusPending
	f.reports[rep.ID] = rep
	return rep, nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id string) (*model.Report, error) {
	rep, ok := f.reports[id]
	if !ok {
		return nil, apperr.NotFound("report %s not found", id)
	}
	return rep, nil
}

func (f *fakeReportRepo) List(_ context.Context, page, size int) ([]model.Report, int, error) {
	var out []model.Report
	for _, rep := range f.reports {
		out = append(out, *rep)
	}
	return out, len(out), nil
}

func (f *fakeReportRepo) UpdateStatus(_ context.Context, reportID string, status model.Status) (*model.Report, error) {
	rep, ok := f.reports[reportID]
	if !ok {
		return nil, apperr.NotFound("report %s not found", reportID)
	}
	if rep.Status.Terminal() && status != rep.Status {
		return nil, apperr.InvalidState("report is already %s", rep.Status)
	}
	rep.Status = status
	f.updates = append(f.updates, status)
	return rep, nil
}

type fakePublisher struct {
	statusEvents   []events.ReportStatusChanged
	locationEvents []events.LocationRecorded
}

func (f *fakePublisher) PublishStatusChanged(_ context.Context, msg events.ReportStatusChanged) error {
	f.statusEvents = append(f.statusEvents, msg)
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

func seedReport(repo *fakeReportRepo, status model.Status) *model.Report {
	rep := &model.Report{ID: "rep-1", RequesterName: "Budi", RequesterPhone: "0812", TransportType: "patient_transport", Status: status}
	repo.reports[rep.ID] = rep
	return rep
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc := NewReportService(newFakeReportRepo(), nil, nil, nil)
	admin := auth.Actor{ID: "a1", Role: auth.RoleAdmin}

	_, err := svc.Create(context.Background(), admin, &model.Report{})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	_, err = svc.Create(context.Background(), admin, &model.Report{RequesterName: "Budi", RequesterPhone: "0812"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	rep, err := svc.Create(context.Background(), admin, &model.Report{
		RequesterName: "Budi", RequesterPhone: "0812", TransportType: "patient_transport",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, rep.Status)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	repo := newFakeReportRepo()
	seedReport(repo, model.StatusPending)
	svc := NewReportService(repo, nil, nil, nil)
	admin := auth.Actor{ID: "a1", Role: auth.RoleAdmin}

	_, err := svc.SetStatus(context.Background(), admin, "rep-1", "finished")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	assert.Empty(t, repo.updates)
}

func TestSetStatusNotifiesConsumers(t *testing.T) {
	repo := newFakeReportRepo()
	seedReport(repo, model.StatusAssigned)
	pub := &fakePublisher{}
	hub := &fakeHub{}
	svc := NewReportService(repo, pub, hub, nil)
	admin := auth.Actor{ID: "a1", Role: auth.RoleAdmin}

	rep, err := svc.SetStatus(context.Background(), admin, "rep-1", "on_way")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnWay, rep.Status)

	require.Len(t, pub.statusEvents, 1)
	assert.Equal(t, "rep-1", pub.statusEvents[0].ReportID)
	assert.Equal(t, "on_way", pub.statusEvents[0].Status)

	require.Len(t, hub.frames, 1)
	assert.Contains(t, string(hub.frames[0]), "status_update")
}

func TestSetStatusTerminalReportRejected(t *testing.T) {
	repo := newFakeReportRepo()
	seedReport(repo, model.StatusDone)
	svc := NewReportService(repo, nil, nil, nil)
	admin := auth.Actor{ID: "a1", Role: auth.RoleAdmin}

	_, err := svc.SetStatus(context.Background(), admin, "rep-1", "on_way")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestSetStatusTerminalRepeatIsIdempotent(t *testing.T) {
	repo := newFakeReportRepo()
	seedReport(repo, model.StatusDone)
	svc := NewReportService(repo, nil, nil, nil)
	admin := auth.Actor{ID: "a1", Role: auth.RoleAdmin}

	rep, err := svc.SetStatus(context.Background(), admin, "rep-1", "done")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, rep.Status)
}

func TestSetStatusFullLifecycle(t *testing.T) {
	repo := newFakeReportRepo()
	seedReport(repo, model.StatusPending)
	pub := &fakePublisher{}
	svc := NewReportService(repo, pub, nil, nil)
	admin := auth.Actor{ID: "a1", Role: auth.RoleAdmin}

	steps := []model.Status{
		model.StatusAssigned, model.StatusOnWay, model.StatusArrivedPickup,
		model.StatusArrivedDestination, model.StatusDone,
	}
	for _, next := range steps {
		rep, err := svc.SetStatus(context.Background(), admin, "rep-1", string(next))
		require.NoError(t, err)
		assert.Equal(t, next, rep.Status)
	}
	assert.Equal(t, steps, repo.updates)
	assert.Len(t, pub.statusEvents, len(steps))

	// Done is final; nothing moves the report afterwards.
	_, err := svc.SetStatus(context.Background(), admin, "rep-1", "on_way")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestSetStatusCancelPath(t *testing.T) {
	repo := newFakeReportRepo()
	seedReport(repo, model.StatusOnWay)
	svc := NewReportService(repo, nil, nil, nil)
	admin := auth.Actor{ID: "a1", Role: auth.RoleAdmin}

	rep, err := svc.SetStatus(context.Background(), admin, "rep-1", "canceled")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, rep.Status)

	_, err = svc.SetStatus(context.Background(), admin, "rep-1", "pending")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestSetStatusUnknownReport(t *testing.T) {
	svc := NewReportService(newFakeReportRepo(), nil, nil, nil)
	admin := auth.Actor{ID: "a1", Role: auth.RoleAdmin}

	_, err := svc.SetStatus(context.Background(), admin, "missing", "on_way")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
