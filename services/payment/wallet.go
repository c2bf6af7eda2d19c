package payment

import (
	"context"
	"time"

	"havenstay/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WalletAdapter settles wallet payments synchronously. The wallet network
// confirms in-line with the request; there is no deferred confirmation leg.
type WalletAdapter struct {
	Logger *zap.Logger
}

func NewWalletAdapter(logger *zap.Logger) *WalletAdapter {
	return &WalletAdapter{Logger: logger}
}

func (a *WalletAdapter) Initiate(ctx context.Context, req models.PaymentRequest) (Result, error) {
	if req.Payer.WalletID == "" {
		return Immediate{Success: false, FailureReason: "wallet id is required"}, nil
	}

	// The wallet network acknowledges the debit in the same round-trip.
	time.Sleep(200 * time.Millisecond)

	txID := "wtx_" + uuid.New().String()
	a.Logger.Info("wallet payment successful",
		zap.String("bookingID", req.BookingID),
		zap.String("walletTx", txID))
	return Immediate{Success: true, ProviderTxID: txID}, nil
}
