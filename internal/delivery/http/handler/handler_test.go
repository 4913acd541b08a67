package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"theralink/internal/delivery/dto"
	"theralink/internal/delivery/http/middleware"
	"theralink/internal/domain/entity"
	"theralink/internal/infrastructure/gateway"
	"theralink/internal/usecase"
	"theralink/pkg/jwt"
	"theralink/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookingUsecase struct {
	usecase.BookingUsecase
	err      error
	created  *dto.CreateBookingRequest
	clientID uuid.UUID
}

func (f *fakeBookingUsecase) CreateBookingRequest(_ context.Context, clientID uuid.UUID, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	f.clientID = clientID
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.BookingResponse{ID: uuid.New(), Status: string(entity.BookingStatusPending)}, nil
}

func (f *fakeBookingUsecase) CancelBookingRequest(_ context.Context, _, _ uuid.UUID) (*dto.BookingResponse, error) {
	return nil, f.err
}

type fakePaymentUsecase struct {
	usecase.PaymentUsecase
	err        error
	webhookErr error
	reference  string
}

func (f *fakePaymentUsecase) PayWithWallet(_ context.Context, _, _ uuid.UUID) (*dto.PaymentResultResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PaymentResultResponse{}, nil
}

func (f *fakePaymentUsecase) VerifyPayment(_ context.Context, _ uuid.UUID, reference string) (*dto.PaymentResultResponse, error) {
	f.reference = reference
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PaymentResultResponse{AlreadySettled: true}, nil
}

func (f *fakePaymentUsecase) HandleWebhook(_ context.Context, _ []byte, _ http.Header) error {
	return f.webhookErr
}

func authed(req *http.Request, roleID int) *http.Request {
	claims := &jwt.Claims{UserID: uuid.New(), Email: "ada@example.com", RoleID: roleID, TokenID: "tok"}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestCreateBooking(t *testing.T) {
	valid := dto.CreateBookingRequest{
		TherapistID:     uuid.New(),
		RequestedDate:   "2026-11-02",
		RequestedTime:   "14:30",
		DurationMinutes: 60,
		SessionType:     entity.SessionTypeVideo,
	}

	cases := []struct {
		name   string
		body   interface{}
		err    error
		status int
	}{
		{"created", valid, nil, http.StatusCreated},
		{"validation", dto.CreateBookingRequest{SessionType: "fax"}, nil, http.StatusBadRequest},
		{"bad date", valid, usecase.ErrInvalidDateFormat, http.StatusBadRequest},
		{"unknown therapist", valid, usecase.ErrTherapistNotFound, http.StatusNotFound},
		{"therapist without rate", valid, usecase.ErrTherapistNotBookable, http.StatusConflict},
		{"internal", valid, fmt.Errorf("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeBookingUsecase{err: tc.err}
			h := NewBookingHandler(fake, validator.NewValidator())

			req := authed(httptest.NewRequest(http.MethodPost, "/client/bookings", jsonBody(t, tc.body)), entity.RoleIDClient)
			rec := httptest.NewRecorder()
			h.CreateBooking(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestCreateBookingRequiresIdentity(t *testing.T) {
	h := NewBookingHandler(&fakeBookingUsecase{}, validator.NewValidator())
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, httptest.NewRequest(http.MethodPost, "/client/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCancelBookingErrorMapping(t *testing.T) {
	cases := map[error]int{
		usecase.ErrBookingNotFound:   http.StatusNotFound,
		usecase.ErrBookingNotOwned:   http.StatusForbidden,
		usecase.ErrBookingNotPending: http.StatusConflict,
	}

	for err, status := range cases {
		h := NewBookingHandler(&fakeBookingUsecase{err: err}, validator.NewValidator())

		router := mux.NewRouter()
		router.HandleFunc("/client/bookings/{id}/cancel", h.CancelBooking).Methods(http.MethodPost)

		req := authed(httptest.NewRequest(http.MethodPost, "/client/bookings/"+uuid.NewString()+"/cancel", nil), entity.RoleIDClient)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, status, rec.Code, err.Error())
	}
}

func TestCancelBookingRejectsMalformedID(t *testing.T) {
	h := NewBookingHandler(&fakeBookingUsecase{}, validator.NewValidator())
	router := mux.NewRouter()
	router.HandleFunc("/client/bookings/{id}/cancel", h.CancelBooking)

	req := authed(httptest.NewRequest(http.MethodPost, "/client/bookings/42/cancel", nil), entity.RoleIDClient)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid booking ID", decodeMessage(t, rec))
}

func TestPayWithWalletErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{usecase.ErrInsufficientBalance, http.StatusPaymentRequired},
		{usecase.ErrPaymentNotRequired, http.StatusConflict},
		{usecase.ErrNotParticipant, http.StatusForbidden},
		{usecase.ErrAppointmentNotFound, http.StatusNotFound},
		{fmt.Errorf("charge: %w", gateway.ErrPaymentDeclined), http.StatusPaymentRequired},
		{fmt.Errorf("%w: connection reset", gateway.ErrUnavailable), http.StatusBadGateway},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		h := NewPaymentHandler(&fakePaymentUsecase{err: tc.err}, validator.NewValidator())
		router := mux.NewRouter()
		router.HandleFunc("/client/appointments/{id}/pay/wallet", h.PayWithWallet)

		req := authed(httptest.NewRequest(http.MethodPost, "/client/appointments/"+uuid.NewString()+"/pay/wallet", nil), entity.RoleIDClient)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, tc.status, rec.Code, fmt.Sprint(tc.err))
	}
}

func TestVerifyPaymentReadsReferenceFromQueryOrBody(t *testing.T) {
	fake := &fakePaymentUsecase{}
	h := NewPaymentHandler(fake, validator.NewValidator())

	rec := httptest.NewRecorder()
	h.VerifyPayment(rec, authed(httptest.NewRequest(http.MethodGet, "/payments/verify?reference=pay_abc", nil), entity.RoleIDClient))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pay_abc", fake.reference)
	assert.Equal(t, "Payment was already settled", decodeMessage(t, rec))

	rec = httptest.NewRecorder()
	body := jsonBody(t, dto.VerifyPaymentRequest{Reference: "dep_xyz"})
	h.VerifyPayment(rec, authed(httptest.NewRequest(http.MethodPost, "/payments/verify", body), entity.RoleIDClient))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dep_xyz", fake.reference)

	rec = httptest.NewRecorder()
	h.VerifyPayment(rec, authed(httptest.NewRequest(http.MethodGet, "/payments/verify", nil), entity.RoleIDClient))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookStatusCodes(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{}
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"accepted", nil, http.StatusOK},
		{"bad signature", gateway.ErrInvalidSignature, http.StatusUnauthorized},
		{"bad payload", fmt.Errorf("decode: %w", syntaxErr), http.StatusBadRequest},
		{"retry later", fmt.Errorf("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewPaymentHandler(&fakePaymentUsecase{webhookErr: tc.err}, validator.NewValidator())
			rec := httptest.NewRecorder()
			h.Webhook(rec, httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewBufferString(`{"event":"charge.success"}`)))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

type fakeWalletUsecase struct {
	usecase.WalletUsecase
	status string
	err    error
}

func (f *fakeWalletUsecase) Withdraw(_ context.Context, _ uuid.UUID, _ *dto.WithdrawRequest) (*dto.TransactionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.TransactionResponse{ID: uuid.New(), Status: f.status}, nil
}

func TestWithdrawStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		fake   *fakeWalletUsecase
		status int
	}{
		{"completed", &fakeWalletUsecase{status: string(entity.TransactionCompleted)}, http.StatusOK},
		{"awaiting gateway", &fakeWalletUsecase{status: string(entity.TransactionPending)}, http.StatusAccepted},
		{"declined", &fakeWalletUsecase{err: fmt.Errorf("transfer: %w", gateway.ErrPaymentDeclined)}, http.StatusPaymentRequired},
		{"insufficient", &fakeWalletUsecase{err: usecase.ErrInsufficientBalance}, http.StatusPaymentRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewWalletHandler(tc.fake, validator.NewValidator())
			body := `{"amount": "2500", "recipient": "RCP_123"}`
			req := authed(httptest.NewRequest(http.MethodPost, "/wallet/withdraw", bytes.NewBufferString(body)), entity.RoleIDTherapist)
			rec := httptest.NewRecorder()
			h.Withdraw(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
