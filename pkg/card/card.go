// Package card derives the storable facts of a payment card number.
// The full number is never persisted; only the brand and last four digits.
package card

import (
	"errors"
	"strings"
)

const (
	TypeVisa       = "visa"
	TypeMastercard = "mastercard"
	TypeAmex       = "amex"
	TypeVerve      = "verve"
	TypeUnknown    = "unknown"
)

var ErrInvalidNumber = errors.New("invalid card number")

// Normalize strips spaces and dashes and rejects anything that is not 12-19
// ASCII digits passing the Luhn check.
func Normalize(number string) (string, error) {
	var b strings.Builder
	for _, r := range number {
		switch {
		case r == ' ' || r == '-':
			continue
		case r >= '0' && r <= '9':
			b.WriteByte(byte(r))
		default:
			return "", ErrInvalidNumber
		}
	}
	digits := b.String()
	if len(digits) < 12 || len(digits) > 19 || !luhnValid(digits) {
		return "", ErrInvalidNumber
	}
	return digits, nil
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Last4 returns the last four digits of a normalized number.
func Last4(digits string) string {
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// Brand maps the leading digits to a card type.
func Brand(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return TypeVisa
	case hasPrefixInRange(digits, 2, 51, 55), hasPrefixInRange(digits, 4, 2221, 2720):
		return TypeMastercard
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return TypeAmex
	case strings.HasPrefix(digits, "506"), strings.HasPrefix(digits, "650"):
		return TypeVerve
	default:
		return TypeUnknown
	}
}

func hasPrefixInRange(digits string, width, lo, hi int) bool {
	if len(digits) < width {
		return false
	}
	n := 0
	for _, r := range digits[:width] {
		n = n*10 + int(r-'0')
	}
	return n >= lo && n <= hi
}
