package handlers

import (
	"net/http"

	"havenstay/services/booking"
	"havenstay/utils"

	"github.com/gin-gonic/gin"
)

// statusFor maps a service error code onto the HTTP status we answer with.
func statusFor(code string) int {
	switch code {
	case booking.CodeValidation:
		return http.StatusBadRequest
	case booking.CodeAuthRequired:
		return http.StatusUnauthorized
	case booking.CodeUnauthorized:
		return http.StatusForbidden
	case booking.CodeNotFound:
		return http.StatusNotFound
	case booking.CodeConflict:
		return http.StatusConflict
	case booking.CodeProvider:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes the standard error envelope for a service error.
func respondError(c *gin.Context, err error) {
	if se, ok := err.(*booking.ServiceError); ok {
		c.JSON(statusFor(se.Code), gin.H{"error": se.Message, "code": se.Code})
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
}
