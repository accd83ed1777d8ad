package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	reportmodel "medtransport/internal/report/model"
)

func TestStatusForReport(t *testing.T) {
	cases := []struct {
		report reportmodel.Status
		want   Status
	}{
		{reportmodel.StatusPending, StatusActive},
		{reportmodel.StatusAssigned, StatusAssigned},
		{reportmodel.StatusOnWay, StatusOnProgress},
		{reportmodel.StatusArrivedPickup, StatusOnProgress},
		{reportmodel.StatusArrivedDestination, StatusOnProgress},
		{reportmodel.StatusDone, StatusCompleted},
		{reportmodel.StatusCanceled, StatusCancelled},
	}
	for _, tc := range cases {
		t.Run(string(tc.report), func(t *testing.T) {
			assert.Equal(t, tc.want, StatusForReport(tc.report))
		})
	}
}

func TestStatusForReportUnknownFallsBackToActive(t *testing.T) {
	assert.Equal(t, StatusActive, StatusForReport(reportmodel.Status("bogus")))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusActive.Terminal())
	assert.False(t, StatusAssigned.Terminal())
	assert.False(t, StatusOnProgress.Terminal())
}
