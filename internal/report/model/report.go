package model

import "time"

// Status is the lifecycle state of a transport report. The string values
// are persisted and must not change.
type Status string

const (
	StatusPending            Status = "pending"
	StatusAssigned           Status = "assigned"
	StatusOnWay              Status = "on_way"
	StatusArrivedPickup      Status = "arrived_pickup"
	StatusArrivedDestination Status = "arrived_destination"
	StatusDone               Status = "done"
	StatusCanceled           Status = "canceled"
)

// Valid reports whether s is one of the seven accepted status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusOnWay, StatusArrivedPickup,
		StatusArrivedDestination, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCanceled
}

// Report is a submitted transport service ticket.
type Report struct {
	ID string `json:"id"`

	RequesterName  string `json:"requester_name"`
	RequesterPhone string `json:"requester_phone"`

	TransportType     string `json:"transport_type"`
	TransportTypeName string `json:"transport_type_name,omitempty"`
	UseStretcher      bool   `json:"use_stretcher"`

	PatientName    string `json:"patient_name"`
	PatientGender  string `json:"patient_gender"`
	PatientAge     int    `json:"patient_age"`
	PatientHistory string `json:"patient_history,omitempty"`

	PickupAddress      string    `json:"pickup_address"`
	DestinationAddress string    `json:"destination_address"`
	ScheduleDate       time.Time `json:"schedule_date"`
	ScheduleTime       string    `json:"schedule_time"`

	ContactPersonName  string `json:"contact_person_name"`
	ContactPersonPhone string `json:"contact_person_phone"`

	Note                  string `json:"note,omitempty"`
	AttachmentKTP         string `json:"attachment_ktp,omitempty"`
	AttachmentHousePhoto  string `json:"attachment_house_photo,omitempty"`
	AttachmentShareloc    string `json:"attachment_sharelok,omitempty"`

	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
