package payment

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"havenstay/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/paymentmethod"
	"go.uber.org/zap"
)

// CardAdapter settles card payments through the card network in one
// synchronous round-trip. Any processor error resolves as an immediate
// failure; the caller may retry with another method.
type CardAdapter struct {
	Logger *zap.Logger
}

func NewCardAdapter(logger *zap.Logger) *CardAdapter {
	return &CardAdapter{Logger: logger}
}

func (a *CardAdapter) Initiate(ctx context.Context, req models.PaymentRequest) (Result, error) {
	methodID := req.Payer.CardToken
	if methodID == "" {
		pm, err := a.buildPaymentMethod(req.Payer)
		if err != nil {
			return Immediate{Success: false, FailureReason: err.Error()}, nil
		}
		methodID = pm
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(math.Round(req.Amount * 100))),
		Currency:      stripe.String(string(stripe.CurrencyKES)),
		PaymentMethod: stripe.String(methodID),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String("Stay booking " + req.BookingReference),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		a.Logger.Warn("card charge declined", zap.String("bookingID", req.BookingID), zap.Error(err))
		return Immediate{Success: false, FailureReason: fmt.Sprintf("card processor error: %v", err)}, nil
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return Immediate{
			Success:       false,
			ProviderTxID:  pi.ID,
			FailureReason: fmt.Sprintf("card payment not completed (status %s)", pi.Status),
		}, nil
	}

	a.Logger.Info("card payment successful",
		zap.String("bookingID", req.BookingID),
		zap.String("paymentIntent", pi.ID))
	return Immediate{Success: true, ProviderTxID: pi.ID}, nil
}

// buildPaymentMethod tokenizes raw card details for clients that did not
// tokenize on their side.
func (a *CardAdapter) buildPaymentMethod(payer models.PayerDetails) (string, error) {
	expMonth, expYear, err := parseExpiry(payer.CardExpiry)
	if err != nil {
		return "", err
	}
	pm, err := paymentmethod.New(&stripe.PaymentMethodParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(payer.CardNumber),
			ExpMonth: stripe.Int64(expMonth),
			ExpYear:  stripe.Int64(expYear),
			CVC:      stripe.String(payer.CardCVC),
		},
	})
	if err != nil {
		return "", fmt.Errorf("card details rejected: %w", err)
	}
	return pm.ID, nil
}

// parseExpiry reads a MM/YY or MM/YYYY card expiry.
func parseExpiry(expiry string) (int64, int64, error) {
	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("card expiry must be MM/YY")
	}
	month, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("card expiry must be MM/YY")
	}
	year, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("card expiry must be MM/YY")
	}
	if year < 100 {
		year += 2000
	}
	return month, year, nil
}
