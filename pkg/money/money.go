package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SessionFee is hourlyRate x durationMinutes/60, rounded to two decimal places.
func SessionFee(hourlyRate decimal.Decimal, durationMinutes int) decimal.Decimal {
	return hourlyRate.
		Mul(decimal.NewFromInt(int64(durationMinutes))).
		Div(decimal.NewFromInt(60)).
		Round(2)
}

// ToMinorUnits converts a major-unit amount (e.g. naira) to the gateway's
// minor unit (kobo, cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}
