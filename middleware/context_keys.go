package middleware

// Context keys used by middleware and handlers. Values are stored on the
// gin context, not on request contexts.
const (
	// UserIDKey holds the authenticated user's ID (string).
	UserIDKey = "user_id"
	// UserEmailKey holds the authenticated user's email (string).
	UserEmailKey = "user_email"
	// UserRoleKey holds the resolved back-office role (types.Role).
	UserRoleKey = "user_role"
	// AuthContextKey holds the full resolved types.AuthContext.
	AuthContextKey = "auth_context"
	// RequestIDKey holds the request correlation ID (string).
	RequestIDKey = "request_id"
)
