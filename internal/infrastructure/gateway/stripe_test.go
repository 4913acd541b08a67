package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v76"
)

func TestMapStripeError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		declined bool
	}{
		{"card declined", &stripe.Error{Type: stripe.ErrorTypeCard, HTTPStatusCode: http.StatusPaymentRequired}, true},
		{"invalid destination", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusBadRequest}, true},
		{"rate limited", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusTooManyRequests}, false},
		{"idempotency conflict", &stripe.Error{Type: stripe.ErrorTypeIdempotency, HTTPStatusCode: http.StatusConflict}, false},
		{"api error", &stripe.Error{Type: stripe.ErrorTypeAPI, HTTPStatusCode: http.StatusInternalServerError}, false},
		{"timeout", context.DeadlineExceeded, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapStripeError(tc.err)
			assert.Equal(t, tc.declined, errors.Is(mapped, ErrPaymentDeclined))
			assert.Equal(t, !tc.declined, errors.Is(mapped, ErrUnavailable))
		})
	}
}
