package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/fleetdesk/fleetdesk-backend/config"
	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// Validator validates a bearer token and returns the resolved identity.
type Validator interface {
	Validate(tokenString string) (*types.AuthContext, error)
}

var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("token invalid")
	ErrTokenMissingClaim = errors.New("token missing required claim")
)

// JWTValidator validates Supabase-issued HS256 access tokens.
type JWTValidator struct {
	secret []byte
}

var _ Validator = (*JWTValidator)(nil)

// NewJWTValidator creates a validator from the auth configuration.
func NewJWTValidator(cfg *config.AuthConfig) (*JWTValidator, error) {
	if cfg.SupabaseJWTSecret == "" {
		return nil, errors.New("jwt validator: SUPABASE_JWT_SECRET is not set")
	}
	return &JWTValidator{secret: []byte(cfg.SupabaseJWTSecret)}, nil
}

// Validate parses and validates the token, extracting the subject, email
// and the app_metadata role claim. Users without a role claim default to
// the driver role.
func (v *JWTValidator) Validate(tokenString string) (*types.AuthContext, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, v.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Join(ErrTokenInvalid, err)
	}

	sub := token.Subject()
	if sub == "" {
		return nil, ErrTokenMissingClaim
	}

	auth := &types.AuthContext{
		UserID: sub,
		Role:   types.RoleDriver,
	}

	if email, ok := token.Get("email"); ok {
		if s, ok := email.(string); ok {
			auth.Email = s
		}
	}

	// Supabase stores the application role under app_metadata.
	if meta, ok := token.Get("app_metadata"); ok {
		if m, ok := meta.(map[string]interface{}); ok {
			if roleClaim, ok := m["role"].(string); ok {
				if role := types.Role(roleClaim); role.IsValid() {
					auth.Role = role
				}
			}
			if driverID, ok := m["driver_id"].(string); ok {
				auth.DriverID = driverID
			}
		}
	}

	return auth, nil
}

// AuthMiddleware validates the Authorization bearer token and attaches
// the resolved identity to the request context.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		authHeader := c.GetHeader("Authorization")
		token := ""
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if token == "" {
			log.Warnw("No token provided", "path", c.Request.URL.Path)
			if err := c.Error(apperrors.Unauthorized("missing_token", "Authorization required")); err != nil {
				log.Errorw("Failed to attach error", "error", err)
			}
			c.Abort()
			return
		}

		auth, err := validator.Validate(token)
		if err != nil {
			log.Warnw("Token validation failed",
				"error", err,
				"token", logger.MaskSensitiveString(token, 4, 4),
				"path", c.Request.URL.Path,
			)
			message := "Invalid token"
			if errors.Is(err, ErrTokenExpired) {
				message = "Your session has expired"
			}
			if err := c.Error(apperrors.Unauthorized("invalid_token", message)); err != nil {
				log.Errorw("Failed to attach error", "error", err)
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, auth.UserID)
		c.Set(UserEmailKey, auth.Email)
		c.Set(UserRoleKey, auth.Role)
		c.Set(AuthContextKey, auth)

		c.Next()
	}
}

// GetAuthContext retrieves the resolved identity from the gin context.
func GetAuthContext(c *gin.Context) (*types.AuthContext, bool) {
	v, exists := c.Get(AuthContextKey)
	if !exists {
		return nil, false
	}
	auth, ok := v.(*types.AuthContext)
	return auth, ok
}
