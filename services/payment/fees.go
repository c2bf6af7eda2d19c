package payment

import (
	"math"

	"havenstay/models"
)

// Provider fee policy. Pure math, no side effects: fees are computed for
// display and reporting, they never change the booking total.

// CardFee is the card network's processing fee.
func CardFee(amount float64) float64 {
	return amount*0.029 + 30
}

// WalletFee is the wallet network's processing fee.
func WalletFee(amount float64) float64 {
	return amount*0.034 + 15
}

// MpesaFee is the mobile money network's fee: free below 100, then 1%
// capped at 25.
func MpesaFee(amount float64) float64 {
	if amount < 100 {
		return 0
	}
	return math.Min(amount*0.01, 25)
}

// ProviderFee dispatches to the matching fee schedule.
func ProviderFee(provider models.PaymentProvider, amount float64) float64 {
	switch provider {
	case models.ProviderCard:
		return CardFee(amount)
	case models.ProviderWallet:
		return WalletFee(amount)
	case models.ProviderMpesa:
		return MpesaFee(amount)
	}
	return 0
}
