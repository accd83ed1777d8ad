package events

import (
	"context"
	"time"
)

// ReportStatusChanged is emitted after every committed status
// synchronization.
type ReportStatusChanged struct {
	ReportID     string    `json:"report_id"`
	Status       string    `json:"status"`
	AssignmentID *string   `json:"assignment_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// LocationRecorded is emitted for every accepted driver location sample.
type LocationRecorded struct {
	LocationID   string    `json:"location_id"`
	DriverID     string    `json:"driver_id"`
	AssignmentID *string   `json:"assignment_id,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timestamp    time.Time `json:"timestamp"`
}

// Publisher fans coordination events out to interested consumers.
// Publishing is best-effort: a broker failure never rolls back the
// committed state change that produced the event.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, msg ReportStatusChanged) error
	PublishLocationRecorded(ctx context.Context, msg LocationRecorded) error
}
