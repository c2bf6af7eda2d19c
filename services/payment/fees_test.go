package payment

import (
	"math"
	"testing"

	"havenstay/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCardFee(t *testing.T) {
	if got := CardFee(1000); !almostEqual(got, 59) {
		t.Errorf("card fee on 1000: expected 59, got %.4f", got)
	}
}

func TestWalletFee(t *testing.T) {
	if got := WalletFee(1000); !almostEqual(got, 49) {
		t.Errorf("wallet fee on 1000: expected 49, got %.4f", got)
	}
}

func TestMpesaFee(t *testing.T) {
	cases := []struct {
		amount float64
		want   float64
	}{
		{50, 0},
		{99.99, 0},
		{100, 1},
		{1000, 10},
		{2500, 25},
		{3000, 25}, // capped
	}
	for _, tc := range cases {
		if got := MpesaFee(tc.amount); !almostEqual(got, tc.want) {
			t.Errorf("mpesa fee on %.2f: expected %.2f, got %.2f", tc.amount, tc.want, got)
		}
	}
}

func TestProviderFeeDispatch(t *testing.T) {
	if got := ProviderFee(models.ProviderCard, 1000); !almostEqual(got, CardFee(1000)) {
		t.Errorf("card dispatch mismatch: %.4f", got)
	}
	if got := ProviderFee(models.ProviderWallet, 1000); !almostEqual(got, WalletFee(1000)) {
		t.Errorf("wallet dispatch mismatch: %.4f", got)
	}
	if got := ProviderFee(models.ProviderMpesa, 1000); !almostEqual(got, MpesaFee(1000)) {
		t.Errorf("mpesa dispatch mismatch: %.4f", got)
	}
	if got := ProviderFee(models.PaymentProvider("cheque"), 1000); got != 0 {
		t.Errorf("unknown provider must cost nothing, got %.4f", got)
	}
}
