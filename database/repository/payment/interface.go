package paymentRepo

import (
	"context"
	"errors"

	"havenstay/models"
)

// ErrNotFound means no transaction matched the given id or reference.
var ErrNotFound = errors.New("payment transaction not found")

// PaymentRepository records payment attempts and their resolution. An
// asynchronous provider's transaction sits in awaiting_confirmation until the
// poller or the callback resolves it.
type PaymentRepository interface {
	Create(ctx context.Context, tx *models.PaymentTransaction) error
	GetByID(ctx context.Context, id string) (*models.PaymentTransaction, error)
	GetByProviderReference(ctx context.Context, providerRef string) (*models.PaymentTransaction, error)

	// Resolve moves an unresolved transaction to completed or failed.
	// Resolving an already-resolved transaction is a no-op so that the
	// poller and the callback can race safely; applied reports whether this
	// call performed the transition.
	Resolve(ctx context.Context, id string, status models.TransactionStatus, failureReason string) (tx *models.PaymentTransaction, applied bool, err error)
}
