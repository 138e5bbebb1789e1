package routes

import (
	"time"

	"fikerless/handlers"
	"fikerless/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handlers so route registration stays in one place.
type HandlerBundle struct {
	Booking *handlers.BookingHandler
	Session *handlers.SessionHandler
}

// RegisterBookingRoutes registers slot queries, availability management and
// the session-request state machine.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/booking")
	{
		// Slot queries are open to any authenticated caller.
		api.GET("/specialists/:id/slots", middleware.RequireAuth("user", "specialist", "admin"), hb.Booking.GetAvailableSlots)

		// Availability management belongs to specialists (and admins).
		api.GET("/specialists/:id/availability", middleware.RequireAuth("specialist", "admin"), hb.Booking.GetAvailability)
		api.PUT("/specialists/:id/availability", middleware.RequireAuth("specialist", "admin"), hb.Booking.SetAvailability)

		// Requests: users open and pay, admins approve/reject.
		requests := api.Group("/requests")
		requests.POST("", middleware.RequireAuth("user"), hb.Booking.CreateRequest)
		requests.GET("/mine", middleware.RequireAuth("user"), hb.Booking.ListMyRequests)
		requests.GET("/:id", middleware.RequireAuth("user", "specialist", "admin"), hb.Booking.GetRequest)
		requests.POST("/:id/payment", middleware.RequireAuth("user"), hb.Booking.SubmitPayment)
		requests.POST("/:id/approve", middleware.RequireAuth("admin"), hb.Booking.ApproveRequest)
		requests.POST("/:id/reject", middleware.RequireAuth("admin"), hb.Booking.RejectRequest)
		requests.POST("/:id/cancel", middleware.RequireAuth("user", "admin"), hb.Booking.CancelRequest)

		api.GET("/specialists/:id/requests", middleware.RequireAuth("specialist", "admin"), hb.Booking.ListSpecialistRequests)
	}
}

// RegisterSessionRoutes registers the confirmed-session lifecycle endpoints.
func RegisterSessionRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/sessions")
	{
		api.GET("", middleware.RequireAuth("user", "specialist"), hb.Session.ListSessions)
		api.GET("/specialists/:id", middleware.RequireAuth("specialist", "admin"), hb.Session.ListSpecialistSessions)
		api.GET("/:id", middleware.RequireAuth("user", "specialist", "admin"), hb.Session.GetSession)
		api.PUT("/:id/status", middleware.RequireAuth("specialist", "admin"), hb.Session.UpdateStatus)
		api.POST("/:id/file", middleware.RequireAuth("specialist", "admin"), hb.Session.UploadSessionFile)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterAuthRoutes registers token management endpoints.
func RegisterAuthRoutes(r *gin.Engine) {
	r.POST("/api/auth/revoke", middleware.RequireAuth(), handlers.RevokeToken)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAuthRoutes(r)
	RegisterBookingRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
}
