package routes

import (
	"net/http"

	"parkhub/internal/handlers"
	"parkhub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Vehicle      *handlers.VehicleHandler
	ParkingLot   *handlers.ParkingLotHandler
	Organization *handlers.OrganizationHandler
	Reservation  *handlers.ReservationHandler
	Discount     *handlers.DiscountHandler
	Session      *handlers.SessionHandler
	Payment      *handlers.PaymentHandler
}

// SetupRoutes mounts the full API under /api/v1.
func SetupRoutes(router *gin.Engine, h *Handlers, jwtSecret string) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	SetupAuthRoutes(v1, h.Auth)
	SetupUserRoutes(v1, h.User, jwtSecret)
	SetupVehicleRoutes(v1, h.Vehicle, jwtSecret)
	SetupParkingLotRoutes(v1, h.ParkingLot, jwtSecret)
	SetupOrganizationRoutes(v1, h.Organization, jwtSecret)
	SetupReservationRoutes(v1, h.Reservation, jwtSecret)
	SetupDiscountRoutes(v1, h.Discount, jwtSecret)
	SetupSessionRoutes(v1, h.Session, jwtSecret)
	SetupPaymentRoutes(v1, h.Payment, jwtSecret)
}

func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}
}

func SetupUserRoutes(r *gin.RouterGroup, userHandler *handlers.UserHandler, jwtSecret string) {
	users := r.Group("/users")
	users.Use(middleware.AuthRequired(jwtSecret))
	{
		users.GET("/me", userHandler.GetProfile)
		users.PUT("/me", userHandler.UpdateProfile)
		users.DELETE("/me", userHandler.DeleteAccount)
	}

	admin := r.Group("/admin/users")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/", userHandler.ListUsers)
		admin.PUT("/:id/organization", userHandler.AssignOrganization)
	}
}

func SetupVehicleRoutes(r *gin.RouterGroup, vehicleHandler *handlers.VehicleHandler, jwtSecret string) {
	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.AuthRequired(jwtSecret))
	{
		vehicles.POST("/", vehicleHandler.RegisterVehicle)
		vehicles.GET("/", vehicleHandler.ListMyVehicles)
		vehicles.GET("/:id", vehicleHandler.GetVehicle)
		vehicles.PUT("/:id", vehicleHandler.UpdateVehicle)
		vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle)
	}
}

func SetupParkingLotRoutes(r *gin.RouterGroup, lotHandler *handlers.ParkingLotHandler, jwtSecret string) {
	lots := r.Group("/parking-lots")
	lots.Use(middleware.AuthRequired(jwtSecret))
	{
		lots.GET("/", lotHandler.ListParkingLots)
		lots.GET("/:id", lotHandler.GetParkingLot)
		lots.GET("/:id/occupancy", lotHandler.GetOccupancy)
	}

	admin := r.Group("/admin/parking-lots")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/", lotHandler.CreateParkingLot)
		admin.PUT("/:id", lotHandler.UpdateParkingLot)
		admin.DELETE("/:id", lotHandler.DeactivateParkingLot)
	}
}

func SetupOrganizationRoutes(r *gin.RouterGroup, orgHandler *handlers.OrganizationHandler, jwtSecret string) {
	admin := r.Group("/admin/organizations")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/", orgHandler.CreateOrganization)
		admin.GET("/", orgHandler.ListOrganizations)
		admin.GET("/:id", orgHandler.GetOrganization)
		admin.PUT("/:id", orgHandler.UpdateOrganization)
	}
}

func SetupReservationRoutes(r *gin.RouterGroup, reservationHandler *handlers.ReservationHandler, jwtSecret string) {
	reservations := r.Group("/reservations")
	reservations.Use(middleware.AuthRequired(jwtSecret))
	{
		reservations.POST("/", reservationHandler.CreateReservation)
		reservations.GET("/", reservationHandler.ListMyReservations)
		reservations.GET("/:id", reservationHandler.GetReservation)
		reservations.PUT("/:id", reservationHandler.UpdateReservation)
		reservations.POST("/:id/cancel", reservationHandler.CancelReservation)
	}

	admin := r.Group("/admin/parking-lots/:id/reservations")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/", reservationHandler.ListLotReservations)
	}
}

func SetupDiscountRoutes(r *gin.RouterGroup, discountHandler *handlers.DiscountHandler, jwtSecret string) {
	// User-facing validation; redeeming happens through reservations.
	discounts := r.Group("/discounts")
	discounts.Use(middleware.AuthRequired(jwtSecret))
	{
		discounts.POST("/validate", discountHandler.ValidateDiscount)
	}

	admin := r.Group("/admin/discounts")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/", discountHandler.CreateDiscount)
		admin.GET("/", discountHandler.ListDiscounts)
		admin.GET("/:id", discountHandler.GetDiscount)
		admin.PUT("/:id", discountHandler.UpdateDiscount)
		admin.DELETE("/:id", discountHandler.DeactivateDiscount)
		admin.GET("/:id/usages", discountHandler.ListUsages)
		admin.GET("/:id/stats", discountHandler.GetUsageStats)
	}
}

func SetupSessionRoutes(r *gin.RouterGroup, sessionHandler *handlers.SessionHandler, jwtSecret string) {
	admin := r.Group("/admin/sessions")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/", sessionHandler.StartSession)
		admin.GET("/:id", sessionHandler.GetSession)
		admin.POST("/:id/end", sessionHandler.EndSession)
	}

	lots := r.Group("/admin/parking-lots/:id/sessions")
	lots.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		lots.GET("/", sessionHandler.ListLotSessions)
	}
}

func SetupPaymentRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, jwtSecret string) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthRequired(jwtSecret))
	{
		payments.POST("/", paymentHandler.ChargeReservation)
		payments.GET("/", paymentHandler.ListMyPayments)
		payments.GET("/:id", paymentHandler.GetPayment)
		payments.GET("/summary", paymentHandler.GetBillingSummary)
	}

	admin := r.Group("/admin/payments")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/:id/refund", paymentHandler.RefundPayment)
	}
}
