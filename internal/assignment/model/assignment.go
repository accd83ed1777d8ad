package model

import (
	"time"

	reportmodel "medtransport/internal/report/model"
)

// Status is the lifecycle state of an assignment. The string values are
// persisted and must not change.
type Status string

const (
	StatusActive     Status = "active"
	StatusAssigned   Status = "assigned"
	StatusOnProgress Status = "on_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// StatusForReport is the single source of truth for deriving an
// assignment's status from its owning report. It is used by the live
// status-synchronization path and by the offline sync-status tool.
func StatusForReport(rs reportmodel.Status) Status {
	switch rs {
	case reportmodel.StatusPending:
		return StatusActive
	case reportmodel.StatusAssigned:
		return StatusAssigned
	case reportmodel.StatusOnWay, reportmodel.StatusArrivedPickup, reportmodel.StatusArrivedDestination:
		return StatusOnProgress
	case reportmodel.StatusDone:
		return StatusCompleted
	case reportmodel.StatusCanceled:
		return StatusCancelled
	}
	return StatusActive
}

// Assignment binds one driver, and optionally one vehicle, to one report.
type Assignment struct {
	ID        string  `json:"id"`
	ReportID  string  `json:"report_id"`
	DriverID  string  `json:"driver_id"`
	VehicleID *string `json:"vehicle_id"`

	Status Status `json:"status"`

	CoffinChecklistConfirmed bool `json:"coffin_checklist_confirmed"`

	AssignedAt  time.Time  `json:"assigned_at"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ReportSummary is the slice of the owning report embedded in assignment
// read models.
type ReportSummary struct {
	TransportTypeName *string `json:"transport_type_name"`
	ScheduleDate      *string `json:"schedule_date"`
	ScheduleTime      *string `json:"schedule_time"`
	RequesterName     string  `json:"requester_name"`
	RequesterPhone    string  `json:"requester_phone"`
	Status            string  `json:"status"`
}

// View is the assignment read model served to dashboards: the assignment
// row enriched with driver name, vehicle plate and a report summary.
type View struct {
	Assignment
	DriverName   *string        `json:"driver_name"`
	VehiclePlate *string        `json:"vehicle_plate"`
	Report       *ReportSummary `json:"report"`
}
