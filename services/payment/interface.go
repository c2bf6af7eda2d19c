package payment

import (
	"context"

	"havenstay/models"
)

// Result is the outcome of a payment initiation. It is a closed union:
// synchronous providers return Immediate, the asynchronous push provider
// returns Pending and resolves out of band.
type Result interface {
	isResult()
}

// Immediate is a synchronously settled attempt: either the provider
// confirmed the charge or it declined it.
type Immediate struct {
	Success       bool
	ProviderTxID  string
	FailureReason string
}

func (Immediate) isResult() {}

// Pending means the provider accepted the request but final confirmation
// arrives later; ProviderReference is the handle to resolve it with.
type Pending struct {
	ProviderReference string
}

func (Pending) isResult() {}

// Adapter is the one capability every payment network is normalized behind.
// Adapters never touch booking state; the router reconciles their results.
type Adapter interface {
	Initiate(ctx context.Context, req models.PaymentRequest) (Result, error)
}

// StatusQuerier is implemented by asynchronous adapters that support polling
// an in-flight payment. resolved stays false while the provider has no final
// answer yet.
type StatusQuerier interface {
	QueryStatus(ctx context.Context, providerRef string) (resolved bool, success bool, reason string, err error)
}
