package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// Capability is a role predicate checked before a handler runs.
type Capability func(types.Role) bool

// RequireCapability aborts with 403 when the authenticated role lacks the
// capability. Must run after AuthMiddleware.
func RequireCapability(name string, allowed Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		auth, ok := GetAuthContext(c)
		if !ok {
			if err := c.Error(apperrors.Unauthorized("missing_identity", "Authorization required")); err != nil {
				log.Errorw("Failed to attach error", "error", err)
			}
			c.Abort()
			return
		}

		if !allowed(auth.Role) {
			log.Warnw("Capability denied",
				"capability", name,
				"role", auth.Role,
				"userID", auth.UserID,
				"path", c.Request.URL.Path,
			)
			if err := c.Error(apperrors.Forbidden("insufficient_role", "Your role does not permit this action")); err != nil {
				log.Errorw("Failed to attach error", "error", err)
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireFleetManagement gates fleet CRUD endpoints.
func RequireFleetManagement() gin.HandlerFunc {
	return RequireCapability("manage_fleet", types.Role.CanManageFleet)
}

// RequirePayoutGeneration gates the payout generation endpoint.
func RequirePayoutGeneration() gin.HandlerFunc {
	return RequireCapability("generate_payouts", types.Role.CanGeneratePayouts)
}

// RequirePayoutViewing gates the cross-driver payout and deduction read
// endpoints. Drivers use the self-scoped routes instead.
func RequirePayoutViewing() gin.HandlerFunc {
	return RequireCapability("view_all_payouts", types.Role.CanViewAllPayouts)
}

// RequirePayoutApproval gates the payout approval endpoint.
func RequirePayoutApproval() gin.HandlerFunc {
	return RequireCapability("approve_payouts", types.Role.CanApprovePayouts)
}

// RequirePaymentRecording gates the payment recording endpoint.
func RequirePaymentRecording() gin.HandlerFunc {
	return RequireCapability("record_payments", types.Role.CanRecordPayments)
}

// RequireIncidentResolution gates incident resolution and deduction review.
func RequireIncidentResolution() gin.HandlerFunc {
	return RequireCapability("resolve_incidents", types.Role.CanResolveIncidents)
}
