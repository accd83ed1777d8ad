package model

import "time"

// Status is the availability state of a vehicle. The string values are
// persisted and must not change.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "in_use"
	StatusMaintenance Status = "maintenance"
)

// Vehicle is a physical transport unit.
type Vehicle struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PlateNumber string    `json:"plate_number"`
	Type        string    `json:"type"`
	TypeName    string    `json:"type_name,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
