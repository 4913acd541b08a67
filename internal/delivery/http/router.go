package http

import (
	"net/http"

	"theralink/internal/delivery/http/handler"
	"theralink/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	profileHandler      *handler.ProfileHandler
	therapistHandler    *handler.TherapistHandler
	bookingHandler      *handler.BookingHandler
	appointmentHandler  *handler.AppointmentHandler
	paymentHandler      *handler.PaymentHandler
	walletHandler       *handler.WalletHandler
	notificationHandler *handler.NotificationHandler
	cardHandler         *handler.CardHandler
	adminHandler        *handler.AdminHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	loggerMiddleware    *middleware.LoggerMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

type Handlers struct {
	Auth         *handler.AuthHandler
	Profile      *handler.ProfileHandler
	Therapist    *handler.TherapistHandler
	Booking      *handler.BookingHandler
	Appointment  *handler.AppointmentHandler
	Payment      *handler.PaymentHandler
	Wallet       *handler.WalletHandler
	Notification *handler.NotificationHandler
	Card         *handler.CardHandler
	Admin        *handler.AdminHandler
	AuditLog     *handler.AuditLogHandler
}

type Middlewares struct {
	Auth      *middleware.AuthMiddleware
	CORS      *middleware.CORSMiddleware
	Logger    *middleware.LoggerMiddleware
	RateLimit *middleware.RateLimitMiddleware
}

func NewRouter(h Handlers, m Middlewares) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         h.Auth,
		profileHandler:      h.Profile,
		therapistHandler:    h.Therapist,
		bookingHandler:      h.Booking,
		appointmentHandler:  h.Appointment,
		paymentHandler:      h.Payment,
		walletHandler:       h.Wallet,
		notificationHandler: h.Notification,
		cardHandler:         h.Card,
		adminHandler:        h.Admin,
		auditLogHandler:     h.AuditLog,
		authMiddleware:      m.Auth,
		corsMiddleware:      m.CORS,
		loggerMiddleware:    m.Logger,
		rateLimitMiddleware: m.RateLimit,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public, rate limited)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(r.rateLimitMiddleware.Handle)
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Public directory
	api.HandleFunc("/therapists", r.therapistHandler.ListTherapists).Methods(http.MethodGet)
	api.HandleFunc("/therapists/{id}", r.therapistHandler.GetTherapist).Methods(http.MethodGet)

	// Gateway callbacks are authenticated by signature, not JWT
	api.HandleFunc("/payments/webhook", r.paymentHandler.Webhook).Methods(http.MethodPost)

	// Authenticated routes (any role)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/auth/logout", r.authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	protected.HandleFunc("/profile", r.profileHandler.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", r.profileHandler.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/profile/avatar", r.profileHandler.UploadAvatar).Methods(http.MethodPost)

	protected.HandleFunc("/notifications", r.notificationHandler.ListNotifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/unread-count", r.notificationHandler.GetUnreadCount).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/stream", r.notificationHandler.Stream).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/read-all", r.notificationHandler.MarkAllAsRead).Methods(http.MethodPut)
	protected.HandleFunc("/notifications/{id}/read", r.notificationHandler.MarkAsRead).Methods(http.MethodPut)

	protected.HandleFunc("/wallet", r.walletHandler.GetWallet).Methods(http.MethodGet)
	protected.HandleFunc("/wallet/transactions", r.walletHandler.ListTransactions).Methods(http.MethodGet)

	protected.HandleFunc("/appointments", r.appointmentHandler.ListAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/status", r.appointmentHandler.UpdateStatus).Methods(http.MethodPut)
	protected.HandleFunc("/appointments/{id}/video", r.appointmentHandler.GetVideoSession).Methods(http.MethodGet)

	// Money movement (authenticated, rate limited)
	money := api.PathPrefix("").Subrouter()
	money.Use(r.authMiddleware.Authenticate)
	money.Use(r.rateLimitMiddleware.Handle)
	money.HandleFunc("/wallet/top-up", r.walletHandler.TopUp).Methods(http.MethodPost)
	money.HandleFunc("/wallet/withdraw", r.walletHandler.Withdraw).Methods(http.MethodPost)
	money.HandleFunc("/payments/verify", r.paymentHandler.VerifyPayment).Methods(http.MethodGet, http.MethodPost)

	// Client routes
	client := api.PathPrefix("/client").Subrouter()
	client.Use(r.authMiddleware.Authenticate)
	client.Use(middleware.RequireClient)

	client.HandleFunc("/bookings", r.bookingHandler.CreateBooking).Methods(http.MethodPost)
	client.HandleFunc("/bookings", r.bookingHandler.ListBookings).Methods(http.MethodGet)
	client.HandleFunc("/bookings/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)
	client.HandleFunc("/bookings/{id}/cancel", r.bookingHandler.CancelBooking).Methods(http.MethodPut)

	client.HandleFunc("/appointments/{id}/payment", r.paymentHandler.GetPaymentSummary).Methods(http.MethodGet)
	clientPay := client.PathPrefix("/appointments/{id}/pay").Subrouter()
	clientPay.Use(r.rateLimitMiddleware.Handle)
	clientPay.HandleFunc("/wallet", r.paymentHandler.PayWithWallet).Methods(http.MethodPost)
	clientPay.HandleFunc("/card", r.paymentHandler.PayWithCard).Methods(http.MethodPost)

	client.HandleFunc("/cards", r.cardHandler.ListCards).Methods(http.MethodGet)
	client.HandleFunc("/cards", r.cardHandler.AddCard).Methods(http.MethodPost)
	client.HandleFunc("/cards/{id}", r.cardHandler.DeleteCard).Methods(http.MethodDelete)

	// Therapist routes (therapists and friends)
	therapist := api.PathPrefix("/therapist").Subrouter()
	therapist.Use(r.authMiddleware.Authenticate)
	therapist.Use(middleware.RequireProvider)

	therapist.HandleFunc("/profile", r.therapistHandler.GetOwnProfile).Methods(http.MethodGet)
	therapist.HandleFunc("/profile", r.therapistHandler.UpsertOwnProfile).Methods(http.MethodPut)
	therapist.HandleFunc("/availability", r.therapistHandler.UpdateAvailability).Methods(http.MethodPut)
	therapist.HandleFunc("/bookings", r.bookingHandler.ListBookings).Methods(http.MethodGet)
	therapist.HandleFunc("/bookings/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)
	therapist.HandleFunc("/bookings/{id}/accept", r.bookingHandler.AcceptBooking).Methods(http.MethodPut)
	therapist.HandleFunc("/bookings/{id}/reject", r.bookingHandler.RejectBooking).Methods(http.MethodPut)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/dashboard", r.adminHandler.GetDashboard).Methods(http.MethodGet)
	admin.HandleFunc("/users", r.adminHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/notifications/broadcast", r.adminHandler.Broadcast).Methods(http.MethodPost)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	r.router.Use(r.loggerMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
