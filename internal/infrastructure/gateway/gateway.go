package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"theralink/config"
)

var (
	// ErrPaymentDeclined means the gateway was reached and refused the operation.
	ErrPaymentDeclined = errors.New("payment declined by gateway")
	// ErrUnavailable means the gateway could not be reached or failed on its side.
	ErrUnavailable      = errors.New("payment gateway unavailable")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnknownProvider  = errors.New("unknown payment provider")
)

// Verification states reported by Verify.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Currency    string
	Reference   string
	CallbackURL string
	Description string
	Metadata    map[string]string
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	// Reference is what Verify and webhooks will report. Some providers
	// assign their own, so callers must persist this value.
	Reference string
}

type VerifyResult struct {
	Reference   string
	Status      string
	AmountMinor int64
	Currency    string
}

func (r *VerifyResult) Paid() bool {
	return r.Status == StatusSuccess
}

type TransferRequest struct {
	AmountMinor int64
	Currency    string
	Recipient   string
	Reference   string
	Reason      string
}

type TransferResult struct {
	Reference    string
	TransferCode string
	Status       string
}

type WebhookEvent struct {
	Type      string
	Reference string
	Status    string
}

// PaymentGateway is the hosted-checkout proxy: initialize, verify, transfer
// and signed webhook parsing.
type PaymentGateway interface {
	Name() string
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	ParseWebhook(payload []byte, header http.Header) (*WebhookEvent, error)
}

func NewPaymentGateway(cfg config.PaymentConfig) (PaymentGateway, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	switch cfg.Provider {
	case "paystack":
		return NewPaystackGateway(cfg.Paystack, httpClient), nil
	case "stripe":
		return NewStripeGateway(cfg.Stripe, httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
