package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	valid := []Status{
		StatusPending, StatusAssigned, StatusOnWay,
		StatusArrivedPickup, StatusArrivedDestination,
		StatusDone, StatusCanceled,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %s to be valid", s)
	}
	assert.False(t, Status("").Valid())
	assert.False(t, Status("finished").Valid())
	assert.False(t, Status("PENDING").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusCanceled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusAssigned.Terminal())
	assert.False(t, StatusOnWay.Terminal())
	assert.False(t, StatusArrivedPickup.Terminal())
	assert.False(t, StatusArrivedDestination.Terminal())
}
