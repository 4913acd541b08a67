package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"theralink/config"
)

const paystackSignatureHeader = "x-paystack-signature"

type paystackGateway struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewPaystackGateway(cfg config.PaystackConfig, httpClient *http.Client) PaymentGateway {
	return &paystackGateway{
		secretKey:  cfg.SecretKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// paystackEnvelope is the common {status, message, data} response shape.
type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (g *paystackGateway) Name() string {
	return "paystack"
}

func (g *paystackGateway) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	body := map[string]interface{}{
		"email":     req.Email,
		"amount":    req.AmountMinor,
		"currency":  req.Currency,
		"reference": req.Reference,
		"metadata":  req.Metadata,
	}
	if req.CallbackURL != "" {
		body["callback_url"] = req.CallbackURL
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := g.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}

	return &InitializeResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (g *paystackGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	var data struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	}
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := g.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}

	return &VerifyResult{
		Reference:   data.Reference,
		Status:      paystackStatus(data.Status),
		AmountMinor: data.Amount,
		Currency:    data.Currency,
	}, nil
}

func (g *paystackGateway) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	body := map[string]interface{}{
		"source":    "balance",
		"amount":    req.AmountMinor,
		"currency":  req.Currency,
		"recipient": req.Recipient,
		"reference": req.Reference,
		"reason":    req.Reason,
	}

	var data struct {
		TransferCode string `json:"transfer_code"`
		Reference    string `json:"reference"`
		Status       string `json:"status"`
	}
	if err := g.do(ctx, http.MethodPost, "/transfer", body, &data); err != nil {
		return nil, fmt.Errorf("paystack transfer: %w", err)
	}
	if data.Status == "failed" || data.Status == "reversed" {
		return nil, fmt.Errorf("paystack transfer %s: %w", data.Status, ErrPaymentDeclined)
	}

	return &TransferResult{
		Reference:    data.Reference,
		TransferCode: data.TransferCode,
		Status:       data.Status,
	}, nil
}

// ParseWebhook checks the HMAC-SHA512 signature of the raw body before decoding it.
func (g *paystackGateway) ParseWebhook(payload []byte, header http.Header) (*WebhookEvent, error) {
	signature := header.Get(paystackSignatureHeader)
	if signature == "" || !hmac.Equal([]byte(signature), []byte(g.sign(payload))) {
		return nil, ErrInvalidSignature
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
			Status    string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("paystack webhook: %w", err)
	}

	return &WebhookEvent{
		Type:      event.Event,
		Reference: event.Data.Reference,
		Status:    paystackStatus(event.Data.Status),
	}, nil
}

func (g *paystackGateway) sign(payload []byte) string {
	mac := hmac.New(sha512.New, []byte(g.secretKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// do sends one request and decodes the envelope's data into out.
// A 4xx with status=false is the gateway refusing the call and maps to ErrPaymentDeclined.
func (g *paystackGateway) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var envelope paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("HTTP %d: %s: %w", resp.StatusCode, envelope.Message, ErrUnavailable)
	}
	if resp.StatusCode >= 400 || !envelope.Status {
		return fmt.Errorf("%s: %w", envelope.Message, ErrPaymentDeclined)
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

func paystackStatus(s string) string {
	switch s {
	case "success":
		return StatusSuccess
	case "failed", "abandoned", "reversed":
		return StatusFailed
	default:
		return StatusPending
	}
}
