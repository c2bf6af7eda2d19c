package payment

import (
	"context"

	"havenstay/models"
	"havenstay/services/payment/mpesa"

	"go.uber.org/zap"
)

// MpesaAdapter runs the two-phase mobile money protocol: the push request
// returns Pending with the checkout request id; resolution happens through
// the status query (polled by the router) or the out-of-band callback.
type MpesaAdapter struct {
	Client *mpesa.Client
	Logger *zap.Logger
}

func NewMpesaAdapter(client *mpesa.Client, logger *zap.Logger) *MpesaAdapter {
	return &MpesaAdapter{Client: client, Logger: logger}
}

func (a *MpesaAdapter) Initiate(ctx context.Context, req models.PaymentRequest) (Result, error) {
	resp, err := a.Client.STKPush(ctx, req.Payer.PhoneNumber, req.Amount, req.BookingReference, "Stay booking deposit")
	if err != nil {
		return nil, err
	}

	a.Logger.Info("stk push accepted",
		zap.String("bookingID", req.BookingID),
		zap.String("checkoutRequestID", resp.CheckoutRequestID))
	return Pending{ProviderReference: resp.CheckoutRequestID}, nil
}

// QueryStatus implements StatusQuerier for the router's bounded poller.
func (a *MpesaAdapter) QueryStatus(ctx context.Context, providerRef string) (bool, bool, string, error) {
	resp, err := a.Client.QueryStatus(ctx, providerRef)
	if err != nil {
		return false, false, "", err
	}
	if !resp.Resolved() {
		return false, false, "", nil
	}
	return true, resp.Success(), resp.ResultDesc, nil
}
