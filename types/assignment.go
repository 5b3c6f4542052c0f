package types

import "time"

type AssignmentStatus string

const (
	AssignmentStatusActive AssignmentStatus = "active"
	AssignmentStatusEnded  AssignmentStatus = "ended"
)

// IsValid checks if the assignment status is a known value.
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusActive, AssignmentStatusEnded:
		return true
	}
	return false
}

// Assignment links a driver to a vehicle for a period.
type Assignment struct {
	ID         int64            `json:"id"`
	DriverID   string           `json:"driverId"`
	VehicleID  string           `json:"vehicleId"`
	StartDate  *time.Time       `json:"startDate,omitempty"`
	EndDate    *time.Time       `json:"endDate,omitempty"`
	Status     AssignmentStatus `json:"status"`
	AssignedBy *string          `json:"assignedBy,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// AssignmentCreate is the request body for assigning a vehicle to a driver.
type AssignmentCreate struct {
	DriverID  string     `json:"driverId" binding:"required,uuid"`
	VehicleID string     `json:"vehicleId" binding:"required,uuid"`
	StartDate *time.Time `json:"startDate,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}
