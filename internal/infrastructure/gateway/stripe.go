package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"theralink/config"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const stripeSignatureHeader = "Stripe-Signature"

type stripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(cfg config.StripeConfig, httpClient *http.Client) PaymentGateway {
	backendConfig := &stripe.BackendConfig{HTTPClient: httpClient}
	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	})

	return &stripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
	}
}

func (g *stripeGateway) Name() string {
	return "stripe"
}

// Initialize creates a hosted Checkout Session. The session id becomes the
// transaction reference because that is what Stripe reports back.
func (g *stripeGateway) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	description := req.Description
	if description == "" {
		description = "TheraLink payment"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:     stripe.String(req.Email),
		ClientReferenceID: stripe.String(req.Reference),
		SuccessURL:        stripe.String(withReferencePlaceholder(req.CallbackURL)),
		CancelURL:         stripe.String(req.CallbackURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					UnitAmount: stripe.Int64(req.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("reference", req.Reference)

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe initialize: %w", mapStripeError(err))
	}

	return &InitializeResult{
		AuthorizationURL: sess.URL,
		Reference:        sess.ID,
	}, nil
}

func (g *stripeGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.Get(reference, params)
	if err != nil {
		return nil, fmt.Errorf("stripe verify: %w", mapStripeError(err))
	}

	return &VerifyResult{
		Reference:   sess.ID,
		Status:      checkoutStatus(sess),
		AmountMinor: sess.AmountTotal,
		Currency:    strings.ToUpper(string(sess.Currency)),
	}, nil
}

// Transfer sends funds to a connected account id held in Recipient.
func (g *stripeGateway) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(req.AmountMinor),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		Destination:   stripe.String(req.Recipient),
		TransferGroup: stripe.String(req.Reference),
		Description:   stripe.String(req.Reason),
	}
	params.Context = ctx
	params.AddMetadata("reference", req.Reference)
	// a retried payout with the same reference must not pay twice
	params.SetIdempotencyKey(req.Reference)

	t, err := g.api.Transfers.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe transfer: %w", mapStripeError(err))
	}

	return &TransferResult{
		Reference:    req.Reference,
		TransferCode: t.ID,
		Status:       StatusSuccess,
	}, nil
}

func (g *stripeGateway) ParseWebhook(payload []byte, header http.Header) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, header.Get(stripeSignatureHeader), g.webhookSecret)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	result := &WebhookEvent{Type: string(event.Type)}
	switch result.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed", "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("stripe webhook: %w", err)
		}
		result.Reference = sess.ID
		result.Status = checkoutStatus(&sess)
	}

	return result, nil
}

func checkoutStatus(sess *stripe.CheckoutSession) string {
	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return StatusSuccess
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		return StatusFailed
	default:
		return StatusPending
	}
}

// mapStripeError turns card and request refusals into ErrPaymentDeclined.
// Rate limiting, conflicts and transport failures stay ErrUnavailable since
// the request may or may not have been applied.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		code := stripeErr.HTTPStatusCode
		if stripeErr.Type == stripe.ErrorTypeCard ||
			(code >= http.StatusBadRequest && code < http.StatusInternalServerError &&
				code != http.StatusTooManyRequests && code != http.StatusConflict) {
			return fmt.Errorf("%s: %w", stripeErr.Msg, ErrPaymentDeclined)
		}
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func withReferencePlaceholder(callbackURL string) string {
	sep := "?"
	if strings.Contains(callbackURL, "?") {
		sep = "&"
	}
	return callbackURL + sep + "reference={CHECKOUT_SESSION_ID}&verify=true"
}
