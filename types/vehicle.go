package types

import "time"

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusRetired     VehicleStatus = "retired"
)

// IsValid checks if the vehicle status is a known value.
func (s VehicleStatus) IsValid() bool {
	switch s {
	case VehicleStatusActive, VehicleStatusMaintenance, VehicleStatusRetired:
		return true
	}
	return false
}

// Vehicle is a fleet vehicle record.
type Vehicle struct {
	ID                 string        `json:"id"`
	RegistrationNumber string        `json:"registrationNumber"`
	Model              *string       `json:"model,omitempty"`
	Brand              *string       `json:"brand,omitempty"`
	Year               *int          `json:"year,omitempty"`
	Color              *string       `json:"color,omitempty"`
	InsuranceNumber    *string       `json:"insuranceNumber,omitempty"`
	InsuranceExpiry    *time.Time    `json:"insuranceExpiry,omitempty"`
	Status             VehicleStatus `json:"status"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// VehicleCreate is the request body for registering a vehicle.
type VehicleCreate struct {
	RegistrationNumber string     `json:"registrationNumber" binding:"required,max=64"`
	Model              *string    `json:"model,omitempty"`
	Brand              *string    `json:"brand,omitempty"`
	Year               *int       `json:"year,omitempty"`
	Color              *string    `json:"color,omitempty"`
	InsuranceNumber    *string    `json:"insuranceNumber,omitempty"`
	InsuranceExpiry    *time.Time `json:"insuranceExpiry,omitempty"`
}

// VehicleUpdate carries partial vehicle updates; nil fields are left unchanged.
type VehicleUpdate struct {
	Model           *string        `json:"model,omitempty"`
	Brand           *string        `json:"brand,omitempty"`
	Year            *int           `json:"year,omitempty"`
	Color           *string        `json:"color,omitempty"`
	InsuranceNumber *string        `json:"insuranceNumber,omitempty"`
	InsuranceExpiry *time.Time     `json:"insuranceExpiry,omitempty"`
	Status          *VehicleStatus `json:"status,omitempty"`
}
