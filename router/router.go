package router

import (
	"github.com/fleetdesk/fleetdesk-backend/config"
	"github.com/fleetdesk/fleetdesk-backend/handlers"
	"github.com/fleetdesk/fleetdesk-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies holds everything SetupRouter needs to register routes.
type Dependencies struct {
	Config           *config.Config
	JWTValidator     middleware.Validator
	FleetHandler     *handlers.FleetHandler
	TripHandler      *handlers.TripHandler
	PayoutHandler    *handlers.PayoutHandler
	IncidentHandler  *handlers.IncidentHandler
	DeductionHandler *handlers.DeductionHandler
	HealthHandler    *handlers.HealthHandler
	Logger           *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Global middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and metrics routes do not require auth
	r.GET("/health", deps.HealthHandler.ReadinessCheck)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTValidator))
	{
		// Driver routes
		driverRoutes := v1.Group("/drivers")
		{
			driverRoutes.POST("", middleware.RequireFleetManagement(), deps.FleetHandler.RegisterDriver)
			driverRoutes.GET("", deps.FleetHandler.ListDrivers)
			driverRoutes.GET("/:id", deps.FleetHandler.GetDriver)
			driverRoutes.PATCH("/:id", middleware.RequireFleetManagement(), deps.FleetHandler.UpdateDriver)
			driverRoutes.DELETE("/:id", middleware.RequireFleetManagement(), deps.FleetHandler.DeleteDriver)
			driverRoutes.GET("/:id/summary", deps.TripHandler.DriverDailySummary)
			driverRoutes.GET("/:id/deductions", middleware.RequirePayoutViewing(), deps.DeductionHandler.ListDriverDeductions)
		}

		// Vehicle routes
		vehicleRoutes := v1.Group("/vehicles")
		{
			vehicleRoutes.POST("", middleware.RequireFleetManagement(), deps.FleetHandler.RegisterVehicle)
			vehicleRoutes.GET("", deps.FleetHandler.ListVehicles)
			vehicleRoutes.GET("/:id", deps.FleetHandler.GetVehicle)
			vehicleRoutes.PATCH("/:id", middleware.RequireFleetManagement(), deps.FleetHandler.UpdateVehicle)
			vehicleRoutes.DELETE("/:id", middleware.RequireFleetManagement(), deps.FleetHandler.DeleteVehicle)
		}

		// Assignment routes
		assignmentRoutes := v1.Group("/assignments")
		{
			assignmentRoutes.POST("", middleware.RequireFleetManagement(), deps.FleetHandler.AssignVehicle)
			assignmentRoutes.GET("", deps.FleetHandler.ListAssignments)
			assignmentRoutes.GET("/:id", deps.FleetHandler.GetAssignment)
			assignmentRoutes.POST("/:id/end", middleware.RequireFleetManagement(), deps.FleetHandler.EndAssignment)
		}

		// Trip routes
		tripRoutes := v1.Group("/trips")
		{
			tripRoutes.POST("", deps.TripHandler.LogTrip)
			tripRoutes.GET("", deps.TripHandler.ListTrips)
			tripRoutes.GET("/:id", deps.TripHandler.GetTrip)
		}

		// Incident routes
		incidentRoutes := v1.Group("/incidents")
		{
			incidentRoutes.POST("", deps.IncidentHandler.ReportIncident)
			incidentRoutes.GET("", deps.IncidentHandler.ListIncidents)
			incidentRoutes.GET("/:id", deps.IncidentHandler.GetIncident)
			incidentRoutes.POST("/:id/resolve", middleware.RequireIncidentResolution(), deps.IncidentHandler.ResolveIncident)
		}

		// Deduction routes
		deductionRoutes := v1.Group("/deductions")
		{
			deductionRoutes.POST("", middleware.RequireIncidentResolution(), deps.DeductionHandler.CreateDeduction)
			deductionRoutes.GET("/:id", deps.DeductionHandler.GetDeduction)
			deductionRoutes.POST("/:id/review", middleware.RequireIncidentResolution(), deps.DeductionHandler.ReviewDeduction)
		}

		// Payout routes
		payoutRoutes := v1.Group("/payouts")
		{
			payoutRoutes.POST("", middleware.RequirePayoutGeneration(), deps.PayoutHandler.GeneratePayout)
			payoutRoutes.GET("", middleware.RequirePayoutViewing(), deps.PayoutHandler.ListPayouts)
			payoutRoutes.GET("/me", deps.PayoutHandler.ListMyPayouts)
			payoutRoutes.GET("/breakdown", deps.PayoutHandler.PreviewBreakdown)
			payoutRoutes.GET("/preview", middleware.RequirePayoutGeneration(), deps.PayoutHandler.PreviewPayout)
			payoutRoutes.GET("/:id", middleware.RequirePayoutViewing(), deps.PayoutHandler.GetPayout)
			payoutRoutes.POST("/:id/approval", middleware.RequirePayoutApproval(), deps.PayoutHandler.ReviewPayout)
			payoutRoutes.POST("/:id/payment", middleware.RequirePaymentRecording(), deps.PayoutHandler.RecordPayment)
		}
	}

	return r
}
