package types

import "time"

type DriverStatus string

const (
	DriverStatusActive    DriverStatus = "active"
	DriverStatusInactive  DriverStatus = "inactive"
	DriverStatusSuspended DriverStatus = "suspended"
)

// IsValid checks if the driver status is a known value.
func (s DriverStatus) IsValid() bool {
	switch s {
	case DriverStatusActive, DriverStatusInactive, DriverStatusSuspended:
		return true
	}
	return false
}

// Driver is a fleet driver profile.
type Driver struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Phone            *string      `json:"phone,omitempty"`
	Email            *string      `json:"email,omitempty"`
	LicenseNumber    *string      `json:"licenseNumber,omitempty"`
	LicenseExpiry    *time.Time   `json:"licenseExpiry,omitempty"`
	Address          *string      `json:"address,omitempty"`
	JoinDate         *time.Time   `json:"joinDate,omitempty"`
	Status           DriverStatus `json:"status"`
	EmergencyContact *string      `json:"emergencyContact,omitempty"`
	UserID           *string      `json:"userId,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// DriverCreate is the request body for registering a driver.
type DriverCreate struct {
	Name             string     `json:"name" binding:"required,max=255"`
	Phone            *string    `json:"phone,omitempty"`
	Email            *string    `json:"email,omitempty" binding:"omitempty,email"`
	LicenseNumber    *string    `json:"licenseNumber,omitempty"`
	LicenseExpiry    *time.Time `json:"licenseExpiry,omitempty"`
	Address          *string    `json:"address,omitempty"`
	JoinDate         *time.Time `json:"joinDate,omitempty"`
	EmergencyContact *string    `json:"emergencyContact,omitempty"`
}

// DriverUpdate carries partial driver updates; nil fields are left unchanged.
type DriverUpdate struct {
	Name             *string       `json:"name,omitempty" binding:"omitempty,max=255"`
	Phone            *string       `json:"phone,omitempty"`
	Email            *string       `json:"email,omitempty" binding:"omitempty,email"`
	LicenseNumber    *string       `json:"licenseNumber,omitempty"`
	LicenseExpiry    *time.Time    `json:"licenseExpiry,omitempty"`
	Address          *string       `json:"address,omitempty"`
	Status           *DriverStatus `json:"status,omitempty"`
	EmergencyContact *string       `json:"emergencyContact,omitempty"`
}
