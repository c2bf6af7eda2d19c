package routes

import (
	"time"

	"havenstay/handlers"
	"havenstay/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers the dependency health endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterBookingRoutes sets up the reservation endpoints. The availability
// pre-check is public; everything that touches a booking requires a caller.
func RegisterBookingRoutes(r *gin.Engine) {
	r.GET("/api/availability", handlers.AvailabilityHandler)

	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", handlers.CreateBookingHandler)
		api.GET("", handlers.ListBookingsHandler)
		api.GET("/:id", handlers.GetBookingHandler)
		api.POST("/:id/cancel", handlers.CancelBookingHandler)
	}

	properties := r.Group("/api/properties")
	{
		properties.Use(middleware.JWTAuthMiddleware())
		properties.GET("/:id/bookings", handlers.ListPropertyBookingsHandler)
	}
}

// RegisterPaymentRoutes sets up the payment endpoints. The mpesa callback is
// unauthenticated because Daraja posts to it directly.
func RegisterPaymentRoutes(r *gin.Engine) {
	api := r.Group("/api/payments")
	{
		api.POST("/mpesa/callback", handlers.MpesaCallbackHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware())
		protected.POST("/initiate", handlers.InitiatePaymentHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r)
	RegisterPaymentRoutes(r)
}
