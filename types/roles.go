package types

// Role is the closed set of back-office roles. Role checks happen once at
// the middleware boundary; handlers and services receive the resolved role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleDriver  Role = "driver"
)

// String returns the string representation of a Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is a known back-office role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDriver:
		return true
	}
	return false
}

// CanManageFleet reports whether the role may create and edit drivers,
// vehicles and assignments.
func (r Role) CanManageFleet() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanGeneratePayouts reports whether the role may run payout generation.
func (r Role) CanGeneratePayouts() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanViewAllPayouts reports whether the role may read payouts and
// deductions across all drivers. Drivers see only their own records.
func (r Role) CanViewAllPayouts() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanApprovePayouts reports whether the role may approve or reject payouts.
func (r Role) CanApprovePayouts() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanRecordPayments reports whether the role may mark payouts paid or failed.
func (r Role) CanRecordPayments() bool {
	return r == RoleAdmin
}

// CanResolveIncidents reports whether the role may update incident status
// and raise deductions.
func (r Role) CanResolveIncidents() bool {
	return r == RoleAdmin || r == RoleManager
}

// AuthContext is the resolved identity attached to a request after token
// validation. It is passed explicitly to services; nothing reads ambient
// session state.
type AuthContext struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
	// DriverID is set when the authenticated user is a driver profile.
	DriverID string `json:"driverId,omitempty"`
}
