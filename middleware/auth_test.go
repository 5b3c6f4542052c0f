package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk-backend/config"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

const testSecret = "test-secret-key-that-is-long-enough-123"

func init() {
	gin.SetMode(gin.TestMode)
	logger.IsTest = true
}

func signToken(t *testing.T, mutate func(b *jwt.Builder)) string {
	t.Helper()

	b := jwt.NewBuilder().
		Subject("user-123").
		Claim("email", "ops@fleetdesk.test").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour))
	if mutate != nil {
		mutate(b)
	}

	token, err := b.Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(testSecret)))
	require.NoError(t, err)
	return string(signed)
}

func newValidator(t *testing.T) *JWTValidator {
	t.Helper()
	v, err := NewJWTValidator(&config.AuthConfig{SupabaseJWTSecret: testSecret})
	require.NoError(t, err)
	return v
}

func TestJWTValidator_Validate(t *testing.T) {
	v := newValidator(t)

	t.Run("valid token with manager role", func(t *testing.T) {
		tokenString := signToken(t, func(b *jwt.Builder) {
			b.Claim("app_metadata", map[string]interface{}{"role": "manager"})
		})

		auth, err := v.Validate(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "user-123", auth.UserID)
		assert.Equal(t, "ops@fleetdesk.test", auth.Email)
		assert.Equal(t, types.RoleManager, auth.Role)
	})

	t.Run("missing role defaults to driver", func(t *testing.T) {
		auth, err := v.Validate(signToken(t, nil))
		require.NoError(t, err)
		assert.Equal(t, types.RoleDriver, auth.Role)
	})

	t.Run("unknown role defaults to driver", func(t *testing.T) {
		tokenString := signToken(t, func(b *jwt.Builder) {
			b.Claim("app_metadata", map[string]interface{}{"role": "superuser"})
		})

		auth, err := v.Validate(tokenString)
		require.NoError(t, err)
		assert.Equal(t, types.RoleDriver, auth.Role)
	})

	t.Run("driver id claim", func(t *testing.T) {
		tokenString := signToken(t, func(b *jwt.Builder) {
			b.Claim("app_metadata", map[string]interface{}{
				"role":      "driver",
				"driver_id": "drv-42",
			})
		})

		auth, err := v.Validate(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "drv-42", auth.DriverID)
	})

	t.Run("expired token", func(t *testing.T) {
		tokenString := signToken(t, func(b *jwt.Builder) {
			b.Expiration(time.Now().Add(-time.Hour))
		})

		_, err := v.Validate(tokenString)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := v.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func setupAuthRouter(v Validator, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(AuthMiddleware(v))
	for _, h := range extra {
		r.Use(h)
	}
	r.GET("/protected", func(c *gin.Context) {
		auth, _ := GetAuthContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": auth.UserID, "role": auth.Role})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	v := newValidator(t)

	t.Run("accepts valid bearer token", func(t *testing.T) {
		r := setupAuthRouter(v)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, nil))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user-123")
	})

	t.Run("rejects missing token", func(t *testing.T) {
		r := setupAuthRouter(v)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		r := setupAuthRouter(v)

		expired := signToken(t, func(b *jwt.Builder) {
			b.Expiration(time.Now().Add(-time.Hour))
		})
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})
}

func TestRequireCapability(t *testing.T) {
	v := newValidator(t)

	newRouter := func(gate gin.HandlerFunc) *gin.Engine {
		r := gin.New()
		r.Use(ErrorHandler())
		r.Use(AuthMiddleware(v))
		r.POST("/payouts", gate, func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		return r
	}

	t.Run("manager may generate payouts", func(t *testing.T) {
		r := newRouter(RequirePayoutGeneration())

		token := signToken(t, func(b *jwt.Builder) {
			b.Claim("app_metadata", map[string]interface{}{"role": "manager"})
		})
		req := httptest.NewRequest(http.MethodPost, "/payouts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("driver may not generate payouts", func(t *testing.T) {
		r := newRouter(RequirePayoutGeneration())

		req := httptest.NewRequest(http.MethodPost, "/payouts", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, nil))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("manager may not record payments", func(t *testing.T) {
		r := newRouter(RequirePaymentRecording())

		token := signToken(t, func(b *jwt.Builder) {
			b.Claim("app_metadata", map[string]interface{}{"role": "manager"})
		})
		req := httptest.NewRequest(http.MethodPost, "/payouts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
