package model

import "time"

// DriverLocation is an immutable location sample. Rows are only ever
// appended; the current position of a driver is the max-timestamp row.
type DriverLocation struct {
	ID           string    `json:"id"`
	DriverID     string    `json:"driver_id"`
	AssignmentID *string   `json:"assignment_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timestamp    time.Time `json:"timestamp"`
}

// JobSummary is the report slice embedded in an on-duty presence record.
type JobSummary struct {
	ID                 string `json:"id"`
	RequesterName      string `json:"requester_name"`
	RequesterPhone     string `json:"requester_phone"`
	TransportType      string `json:"transport_type"`
	UseStretcher       bool   `json:"use_stretcher"`
	PickupAddress      string `json:"pickup_address"`
	DestinationAddress string `json:"destination_address"`
	Notes              string `json:"notes"`
	Status             string `json:"status"`
}

// LatestSample is the raw read-side join the classifier works from: a
// driver's newest location row together with the referenced assignment,
// vehicle and report state, when an assignment is attached.
type LatestSample struct {
	Location     DriverLocation
	VehicleName  *string
	VehiclePlate *string
	Job          *JobSummary
}

// PresenceRecord is the classified duty view of one driver, served to the
// tracking dashboard. HasLocation and the cleared AssignmentID are part
// of the dashboard contract.
type PresenceRecord struct {
	ID           string    `json:"id"`
	DriverID     string    `json:"driver_id"`
	DriverName   string    `json:"driver_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timestamp    time.Time `json:"timestamp"`
	AssignmentID *string   `json:"assignment_id"`
	HasLocation  bool      `json:"has_location"`
	OnDuty       bool      `json:"on_duty"`

	Status string `json:"status,omitempty"` // "no_location" for placeholder rows

	VehicleName         *string     `json:"vehicle_name,omitempty"`
	VehicleLicensePlate *string     `json:"vehicle_license_plate,omitempty"`
	Report              *JobSummary `json:"report,omitempty"`
}
