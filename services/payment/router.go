package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "havenstay/database/repository/booking"
	paymentRepo "havenstay/database/repository/payment"
	"havenstay/models"
	"havenstay/services/booking"
	"havenstay/services/notification"
	"havenstay/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InitiateInput is the client's payment request as received at the API
// boundary.
type InitiateInput struct {
	BookingID   string              `json:"bookingId"`
	Amount      float64             `json:"amount"`
	Method      string              `json:"method"`
	Payer       models.PayerDetails `json:"payerDetails"`
	RequesterID string              `json:"-"`
}

// InitiateResult is what the caller gets back. A declined synchronous
// payment is a handled outcome, not an error: Success is false and Message
// explains why. Pending payments carry the handle to track resolution with.
type InitiateResult struct {
	Success       bool    `json:"success"`
	Pending       bool    `json:"pending,omitempty"`
	TransactionID string  `json:"transactionId,omitempty"`
	PendingHandle string  `json:"pendingHandle,omitempty"`
	Fee           float64 `json:"fee"`
	Message       string  `json:"message"`
}

// Router validates payment input, dispatches to the matching provider
// adapter and reconciles the adapter's result against the booking state
// machine.
type Router struct {
	Card   Adapter
	Wallet Adapter
	Mpesa  Adapter

	Bookings bookingRepo.BookingRepository
	Payments paymentRepo.PaymentRepository
	Notifier notification.Sender
	Hub      *booking.WatchHub
	Logger   *zap.Logger

	// Bounded resolution for asynchronous providers.
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// ParseProvider maps the API method name onto a provider variant.
func ParseProvider(method string) (models.PaymentProvider, error) {
	switch method {
	case "card":
		return models.ProviderCard, nil
	case "wallet":
		return models.ProviderWallet, nil
	case "mobile-money", "mpesa":
		return models.ProviderMpesa, nil
	}
	return "", booking.NewValidationError(fmt.Sprintf("unsupported payment method: %s", method))
}

// adapterFor returns the adapter for a provider variant.
func (r *Router) adapterFor(provider models.PaymentProvider) Adapter {
	switch provider {
	case models.ProviderCard:
		return r.Card
	case models.ProviderWallet:
		return r.Wallet
	case models.ProviderMpesa:
		return r.Mpesa
	}
	return nil
}

// validatePayer checks the payer details shape for the chosen provider
// before any network call, normalizing the phone number for mobile money.
func validatePayer(provider models.PaymentProvider, payer *models.PayerDetails) error {
	switch provider {
	case models.ProviderCard:
		if payer.CardToken == "" && (payer.CardNumber == "" || payer.CardExpiry == "" || payer.CardCVC == "") {
			return booking.NewValidationError("card payments require a card token or number, expiry and cvc")
		}
	case models.ProviderWallet:
		if payer.WalletID == "" {
			return booking.NewValidationError("wallet payments require a wallet id")
		}
	case models.ProviderMpesa:
		normalized, ok := NormalizePhoneNumber(payer.PhoneNumber)
		if !ok {
			return booking.NewValidationError("phone number is not a valid mobile money number")
		}
		payer.PhoneNumber = normalized
	}
	return nil
}

// InitiatePayment drives one payment attempt end to end. Validation failures
// return before any mutation; provider errors leave the booking untouched.
func (r *Router) InitiatePayment(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	b, err := r.Bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, booking.NewNotFoundError(fmt.Sprintf("booking %s not found", input.BookingID))
		}
		return nil, err
	}
	if b.UserID != input.RequesterID {
		return nil, booking.NewUnauthorizedError("booking belongs to another user")
	}
	if b.Status != models.BookingStatusPending {
		return nil, booking.NewValidationError(fmt.Sprintf("booking is %s and cannot be paid", b.Status))
	}
	if b.PaymentStatus == models.PaymentStatusCompleted {
		return nil, booking.NewValidationError("booking is already paid")
	}
	if input.Amount != b.TotalCost {
		return nil, booking.NewValidationError(fmt.Sprintf("amount must equal the booking total of %.2f", b.TotalCost))
	}

	provider, err := ParseProvider(input.Method)
	if err != nil {
		return nil, err
	}
	if err := validatePayer(provider, &input.Payer); err != nil {
		return nil, err
	}

	req := models.PaymentRequest{
		BookingID:        b.ID,
		BookingReference: b.BookingReference,
		UserID:           b.UserID,
		Amount:           input.Amount,
		Provider:         provider,
		Payer:            input.Payer,
	}

	adapter := r.adapterFor(provider)
	result, err := adapter.Initiate(ctx, req)
	if err != nil {
		r.Logger.Error("payment provider unreachable",
			zap.String("bookingID", b.ID),
			zap.String("provider", string(provider)),
			zap.Error(err))
		return nil, booking.NewProviderError(fmt.Sprintf("%s provider error: %v", provider, err))
	}

	fee := ProviderFee(provider, input.Amount)

	switch res := result.(type) {
	case Immediate:
		tx := r.newTransaction(b.ID, provider, input.Amount, res.ProviderTxID)
		if res.Success {
			tx.Status = models.TransactionCompleted
		} else {
			tx.Status = models.TransactionFailed
			tx.FailureReason = res.FailureReason
		}
		if err := r.Payments.Create(ctx, tx); err != nil {
			r.Logger.Error("failed to record payment transaction", zap.Error(err))
		}

		if res.Success {
			r.applyPaid(ctx, b.ID, res.ProviderTxID, b.UserEmail)
			return &InitiateResult{
				Success:       true,
				TransactionID: tx.ID,
				Fee:           fee,
				Message:       "payment completed",
			}, nil
		}

		r.applyFailed(ctx, b.ID, res.FailureReason)
		return &InitiateResult{
			Success:       false,
			TransactionID: tx.ID,
			Fee:           fee,
			Message:       res.FailureReason,
		}, nil

	case Pending:
		tx := r.newTransaction(b.ID, provider, input.Amount, res.ProviderReference)
		tx.Status = models.TransactionAwaitingConfirmation
		if err := r.Payments.Create(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to record pending payment: %w", err)
		}

		if querier, ok := adapter.(StatusQuerier); ok {
			go r.pollUntilResolved(tx.ID, res.ProviderReference, querier)
		}

		return &InitiateResult{
			Success:       true,
			Pending:       true,
			TransactionID: tx.ID,
			PendingHandle: res.ProviderReference,
			Fee:           fee,
			Message:       "payment initiated; confirm on your phone",
		}, nil
	}

	return nil, booking.NewProviderError("provider returned an unknown result")
}

func (r *Router) newTransaction(bookingID string, provider models.PaymentProvider, amount float64, providerRef string) *models.PaymentTransaction {
	now := time.Now()
	return &models.PaymentTransaction{
		ID:                uuid.New().String(),
		BookingID:         bookingID,
		Provider:          provider,
		ProviderReference: providerRef,
		Amount:            amount,
		Status:            models.TransactionInitiated,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// pollUntilResolved drives the bounded poll loop for an asynchronous
// payment. The transaction always resolves: either the provider answers in
// time or the deadline marks it failed.
func (r *Router) pollUntilResolved(txID, providerRef string, querier StatusQuerier) {
	ctx, cancel := context.WithTimeout(context.Background(), r.PollTimeout)
	defer cancel()

	ticker := time.NewTicker(r.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.ResolveTransaction(context.Background(), txID, false, "payment confirmation timed out")
			return
		case <-ticker.C:
			resolved, success, reason, err := querier.QueryStatus(ctx, providerRef)
			if err != nil {
				r.Logger.Debug("status query attempt failed",
					zap.String("providerRef", providerRef), zap.Error(err))
				continue
			}
			if resolved {
				r.ResolveTransaction(context.Background(), txID, success, reason)
				return
			}
		}
	}
}

// ResolveTransaction finalizes an asynchronous payment exactly once. Both
// the poller and the provider callback funnel through here; the repository
// guarantees only the first caller applies.
func (r *Router) ResolveTransaction(ctx context.Context, txID string, success bool, reason string) {
	status := models.TransactionFailed
	if success {
		status = models.TransactionCompleted
	}

	tx, applied, err := r.Payments.Resolve(ctx, txID, status, reason)
	if err != nil {
		r.Logger.Error("failed to resolve payment transaction",
			zap.String("transactionID", txID), zap.Error(err))
		return
	}
	if !applied {
		// The other resolution path won the race.
		return
	}

	b, err := r.Bookings.GetByID(ctx, tx.BookingID)
	if err != nil {
		r.Logger.Error("failed to load booking for resolved payment",
			zap.String("bookingID", tx.BookingID), zap.Error(err))
		return
	}

	if success {
		r.applyPaid(ctx, tx.BookingID, tx.ProviderReference, b.UserEmail)
	} else {
		r.applyFailed(ctx, tx.BookingID, reason)
	}
}

// ResolveByProviderReference handles the provider's out-of-band callback.
func (r *Router) ResolveByProviderReference(ctx context.Context, providerRef string, success bool, reason string) error {
	tx, err := r.Payments.GetByProviderReference(ctx, providerRef)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrNotFound) {
			return booking.NewNotFoundError(fmt.Sprintf("no payment with reference %s", providerRef))
		}
		return err
	}
	r.ResolveTransaction(ctx, tx.ID, success, reason)
	return nil
}

// applyPaid commits the completed payment to the booking state machine and
// emits the out-of-band side effects.
func (r *Router) applyPaid(ctx context.Context, bookingID, providerRef, userEmail string) {
	b, err := r.Bookings.MarkPaid(ctx, bookingID, providerRef)
	if err != nil {
		r.Logger.Error("failed to mark booking paid",
			zap.String("bookingID", bookingID), zap.Error(err))
		return
	}

	r.Logger.Info("booking payment completed",
		zap.String("bookingID", bookingID),
		zap.String("providerRef", providerRef))

	if b.Status == models.BookingStatusConfirmed {
		r.notify(userEmail, "booking_confirmed", map[string]string{
			"bookingReference": b.BookingReference,
			"totalCost":        fmt.Sprintf("%.2f", b.TotalCost),
			"checkIn":          b.CheckIn.Format(booking.DateLayout),
		})
		if r.Hub != nil {
			r.Hub.Publish("confirmed", *b)
		}
	} else {
		// Payment landed after cancellation: keep the money recorded, the
		// booking stays terminal.
		r.Logger.Warn("payment completed on a cancelled booking",
			zap.String("bookingID", bookingID))
	}
}

// applyFailed records the failed attempt; the booking stays pending so the
// user can retry with another method.
func (r *Router) applyFailed(ctx context.Context, bookingID, reason string) {
	b, err := r.Bookings.MarkPaymentFailed(ctx, bookingID, reason)
	if err != nil {
		r.Logger.Error("failed to mark payment failed",
			zap.String("bookingID", bookingID), zap.Error(err))
		return
	}
	if r.Hub != nil {
		r.Hub.Publish("payment_failed", *b)
	}
}

// notify emits a best-effort notification; failures never affect the
// payment outcome.
func (r *Router) notify(recipient, template string, params map[string]string) {
	if r.Notifier == nil || recipient == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := r.Notifier.Send(ctx, template, recipient, params); err != nil {
			utils.GetLogger().Warn("notification delivery failed",
				zap.String("template", template), zap.Error(err))
		}
	}()
}
