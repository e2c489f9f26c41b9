// Package payment implements the in-conversation payment flow: a draft form
// with a suggested amount, the 5% platform fee split, and the simulated
// settlement delay.
package payment

import (
	"strings"

	"github.com/shopspring/decimal"

	"craftlink/go-backend/internal/domains/contracts"
)

// PlatformFeeRate is the fraction of the gross amount retained by the
// platform on every transaction.
var PlatformFeeRate = decimal.NewFromFloat(0.05)

// DefaultAmount and DefaultProjectLabel pre-fill the payment form when the
// triggering message carries no suggestion of its own.
const (
	DefaultAmount       = "100"
	DefaultProjectLabel = "Website Design"
)

const amountScale = 2

// ParseAmount validates a user-entered amount string. The amount must be a
// decimal number strictly greater than zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, contracts.InvalidInput("amount is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, contracts.InvalidInput("amount %q is not a number", raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, contracts.InvalidInput("amount must be greater than zero")
	}
	return amount, nil
}

// SplitFee applies the platform fee to a gross amount, rounding both parts
// to cents. The fee is rounded first and the net is the remainder, so the
// two always sum back to the gross.
func SplitFee(gross decimal.Decimal) (fee, net decimal.Decimal) {
	fee = gross.Mul(PlatformFeeRate).Round(amountScale)
	net = gross.Sub(fee)
	return fee, net
}

// FormatAmount renders an amount with two decimal places, as shown in the
// payment form and settlement summary.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(amountScale)
}
