package models

import "time"

// PaymentProvider identifies one of the supported payment networks.
type PaymentProvider string

const (
	ProviderCard   PaymentProvider = "card"
	ProviderWallet PaymentProvider = "wallet"
	ProviderMpesa  PaymentProvider = "mpesa"
)

// Valid reports whether p names a supported provider.
func (p PaymentProvider) Valid() bool {
	switch p {
	case ProviderCard, ProviderWallet, ProviderMpesa:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle of a payment transaction record.
type TransactionStatus string

const (
	TransactionInitiated            TransactionStatus = "initiated"
	TransactionAwaitingConfirmation TransactionStatus = "awaiting_confirmation"
	TransactionCompleted            TransactionStatus = "completed"
	TransactionFailed               TransactionStatus = "failed"
)

// PaymentTransaction records one payment attempt against a booking.
// ProviderReference is the provider-specific handle, e.g. the checkout
// request id for an asynchronous push payment.
type PaymentTransaction struct {
	ID                string            `bson:"id" json:"id"`
	BookingID         string            `bson:"booking_id" json:"bookingId"`
	Provider          PaymentProvider   `bson:"provider" json:"provider"`
	ProviderReference string            `bson:"provider_reference,omitempty" json:"providerReference,omitempty"`
	Amount            float64           `bson:"amount" json:"amount"`
	Status            TransactionStatus `bson:"status" json:"status"`
	FailureReason     string            `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`
	CreatedAt         time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time         `bson:"updated_at" json:"updatedAt"`
}

// PayerDetails carries the provider-specific payer input supplied by the
// client. Only the fields relevant to the chosen provider are expected.
type PayerDetails struct {
	// Card fields.
	CardNumber  string `json:"cardNumber,omitempty"`
	CardExpiry  string `json:"cardExpiry,omitempty"`
	CardCVC     string `json:"cardCvc,omitempty"`
	CardToken   string `json:"cardToken,omitempty"`
	BillingName string `json:"billingName,omitempty"`

	// Wallet fields.
	WalletID string `json:"walletId,omitempty"`

	// Mobile money fields.
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// PaymentRequest is the normalized input handed to a provider adapter.
type PaymentRequest struct {
	BookingID        string
	BookingReference string
	UserID           string
	Amount           float64
	Provider         PaymentProvider
	Payer            PayerDetails
}
