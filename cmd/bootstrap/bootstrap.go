package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	deliveryHttp "theralink/internal/delivery/http"
	"theralink/internal/delivery/http/handler"
	"theralink/internal/delivery/http/middleware"
	"theralink/pkg/validator"
)

// App holds all dependencies for the application
type App struct {
	*Container
	Server *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	container, err := NewContainer()
	if err != nil {
		return nil, err
	}

	app := &App{Container: container}
	app.Server = initializeServer(container)

	return app, nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(c *Container) *http.Server {
	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:         handler.NewAuthHandler(c.Auth, customValidator, c.JWTService),
		Profile:      handler.NewProfileHandler(c.Profile, customValidator),
		Therapist:    handler.NewTherapistHandler(c.Therapist, customValidator),
		Booking:      handler.NewBookingHandler(c.Booking, customValidator),
		Appointment:  handler.NewAppointmentHandler(c.Appointment, c.Video, customValidator),
		Payment:      handler.NewPaymentHandler(c.Payment, customValidator),
		Wallet:       handler.NewWalletHandler(c.Wallet, customValidator),
		Notification: handler.NewNotificationHandler(c.Notification, c.Log),
		Card:         handler.NewCardHandler(c.Card, customValidator),
		Admin:        handler.NewAdminHandler(c.Admin, c.Notification, customValidator),
		AuditLog:     handler.NewAuditLogHandler(c.AuditLog),
	}

	// Initialize middleware
	middlewares := deliveryHttp.Middlewares{
		Auth:      middleware.NewAuthMiddleware(c.JWTService, c.TokenStore),
		CORS:      middleware.NewCORSMiddleware(),
		Logger:    middleware.NewLoggerMiddleware(c.Log),
		RateLimit: middleware.NewRateLimitMiddleware(c.Config.RateLimit),
	}

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, middlewares)

	return newServer(fmt.Sprintf(":%s", c.Config.App.Port), router.Setup())
}

// newServer ties every request context to the server lifetime so Shutdown
// ends long-lived notification streams instead of waiting on them.
func newServer(addr string, h http.Handler) *http.Server {
	baseCtx, cancel := context.WithCancel(context.Background())

	// WriteTimeout stays unset so the notification stream can stay open
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancel)
	return server
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}
