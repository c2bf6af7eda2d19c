package handlers

import (
	"net/http"
	"time"

	"havenstay/middleware"
	"havenstay/services/booking"
	"havenstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingService is wired in main before the routes are registered.
var BookingService booking.BookingService

// HealthHandler reports the latest dependency health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo || !status.Redis {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// AvailabilityHandler answers the advisory availability pre-check.
func AvailabilityHandler(c *gin.Context) {
	propertyID := c.Query("propertyId")
	if propertyID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "propertyId is required")
		return
	}

	checkIn, err := time.Parse(booking.DateLayout, c.Query("checkIn"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "checkIn must be formatted as "+booking.DateLayout)
		return
	}
	checkOut, err := time.Parse(booking.DateLayout, c.Query("checkOut"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "checkOut must be formatted as "+booking.DateLayout)
		return
	}
	if !checkOut.After(checkIn) {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", "checkOut must be after checkIn")
		return
	}

	result, err := BookingService.CheckAvailability(c.Request.Context(), propertyID, checkIn, checkOut)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateBookingHandler reserves a stay for the authenticated user.
func CreateBookingHandler(c *gin.Context) {
	logger := getLogger(c)

	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Error("Invalid booking creation request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	userID, email, _ := middleware.IdentityFrom(c)
	input.UserID = userID
	input.UserEmail = email

	b, err := BookingService.CreateBooking(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetBookingHandler returns one booking to its owner or to support staff.
func GetBookingHandler(c *gin.Context) {
	userID, _, elevated := middleware.IdentityFrom(c)

	b, err := BookingService.GetBooking(c.Request.Context(), c.Param("id"), userID, elevated)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListBookingsHandler returns the caller's bookings, newest first.
func ListBookingsHandler(c *gin.Context) {
	userID, _, _ := middleware.IdentityFrom(c)

	bookings, err := BookingService.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListPropertyBookingsHandler returns a property's booking calendar to
// support staff.
func ListPropertyBookingsHandler(c *gin.Context) {
	_, _, elevated := middleware.IdentityFrom(c)
	activeOnly := c.Query("activeOnly") != "false"

	bookings, err := BookingService.ListPropertyBookings(c.Request.Context(), c.Param("id"), activeOnly, elevated)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CancelBookingHandler cancels a pending or confirmed booking.
func CancelBookingHandler(c *gin.Context) {
	logger := getLogger(c)

	// The reason is optional; an empty body cancels without one.
	var input struct {
		Reason string `json:"reason"`
	}
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			logger.Error("Invalid cancellation request", zap.Error(err))
			utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
			return
		}
	}

	userID, _, elevated := middleware.IdentityFrom(c)

	b, err := BookingService.CancelBooking(c.Request.Context(), c.Param("id"), input.Reason, userID, elevated)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
