package handlers

import (
	"net/http"

	"havenstay/middleware"
	"havenstay/services/payment"
	"havenstay/services/payment/mpesa"
	"havenstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentRouter is wired in main before the routes are registered.
var PaymentRouter *payment.Router

// InitiatePaymentHandler drives one payment attempt for a booking.
func InitiatePaymentHandler(c *gin.Context) {
	logger := getLogger(c)

	var input payment.InitiateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Error("Invalid payment request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	userID, _, _ := middleware.IdentityFrom(c)
	input.RequesterID = userID

	result, err := PaymentRouter.InitiatePayment(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MpesaCallbackHandler receives the Daraja result callback. The provider
// retries on non-2xx responses, so this always acknowledges; an unknown
// reference is logged and dropped.
func MpesaCallbackHandler(c *gin.Context) {
	logger := getLogger(c)

	var payload mpesa.CallbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Warn("Malformed mpesa callback", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
		return
	}

	cb := payload.Body.StkCallback
	if cb.CheckoutRequestID != "" {
		success := cb.ResultCode == 0
		if err := PaymentRouter.ResolveByProviderReference(c.Request.Context(), cb.CheckoutRequestID, success, cb.ResultDesc); err != nil {
			logger.Warn("Unmatched mpesa callback",
				zap.String("checkoutRequestID", cb.CheckoutRequestID),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}
