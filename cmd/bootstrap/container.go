package bootstrap

import (
	"fmt"

	"theralink/config"
	"theralink/internal/infrastructure/cache"
	"theralink/internal/infrastructure/database"
	"theralink/internal/infrastructure/gateway"
	"theralink/internal/infrastructure/messaging"
	"theralink/internal/infrastructure/queue"
	"theralink/internal/infrastructure/storage"
	"theralink/internal/repository"
	"theralink/internal/service"
	"theralink/internal/usecase"
	"theralink/pkg/jwt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container holds the infrastructure clients and usecases shared by the API
// server and the background worker.
type Container struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	QueueClient *asynq.Client
	Publisher   messaging.EventPublisher
	JWTService  *jwt.JWTService
	TokenStore  service.TokenStore

	Auth         usecase.AuthUsecase
	Profile      usecase.ProfileUsecase
	Therapist    usecase.TherapistUsecase
	Booking      usecase.BookingUsecase
	Appointment  usecase.AppointmentUsecase
	Payment      usecase.PaymentUsecase
	Wallet       usecase.WalletUsecase
	Notification usecase.NotificationUsecase
	Video        usecase.VideoUsecase
	Card         usecase.CardUsecase
	Admin        usecase.AdminUsecase
	AuditLog     usecase.AuditLogUsecase
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// NewContainer connects every backing service and wires the usecases.
func NewContainer() (*Container, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg.App.LogLevel)
	log.Info("Configuration loaded successfully")

	c := &Container{Config: cfg, Log: log}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	c.RedisClient = redisClient

	paymentGateway, err := gateway.NewPaymentGateway(cfg.Payment)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to configure payment gateway: %w", err)
	}

	publisher, err := messaging.NewEventPublisher(cfg.Kafka, log)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	c.Publisher = publisher

	fileStorage, err := storage.NewCloudinaryStorage(cfg.Storage)
	if err != nil {
		log.Warnf("Avatar uploads disabled: %v", err)
		fileStorage = storage.NewDisabledStorage()
	}

	c.QueueClient = asynq.NewClient(queue.RedisOpt(cfg.Redis, cfg.Queue))
	enqueuer := queue.NewTaskEnqueuer(c.QueueClient)

	c.JWTService = jwt.NewJWTService(cfg.JWT)
	c.TokenStore = service.NewTokenStore(redisClient)

	transactor := database.NewTransactor(db)

	// Initialize repositories
	profileRepo := repository.NewProfileRepository()
	roleRepo := repository.NewRoleRepository()
	therapistRepo := repository.NewTherapistProfileRepository()
	bookingRepo := repository.NewBookingRequestRepository()
	intentRepo := repository.NewPaymentIntentRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	transactionRepo := repository.NewTransactionRepository()
	walletRepo := repository.NewWalletRepository()
	notificationRepo := repository.NewNotificationRepository()
	videoRepo := repository.NewVideoSessionRepository()
	cardRepo := repository.NewPaymentCardRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(transactor, log, auditLogRepo)
	hub := service.NewRealtimeHub(redisClient, log)
	notifier := service.NewNotifier(transactor, log, notificationRepo, hub)

	currency := cfg.Payment.Currency
	reminderLead := cfg.Notification.ReminderLead

	// Initialize usecases
	c.Auth = usecase.NewAuthUsecase(transactor, log, profileRepo, roleRepo, therapistRepo, c.JWTService, c.TokenStore, auditService)
	c.Profile = usecase.NewProfileUsecase(transactor, log, profileRepo, fileStorage, auditService)
	c.Therapist = usecase.NewTherapistUsecase(transactor, log, therapistRepo, auditService)
	c.Booking = usecase.NewBookingUsecase(transactor, log, bookingRepo, intentRepo, appointmentRepo, therapistRepo, notifier, publisher, enqueuer, auditService, currency, reminderLead)
	c.Appointment = usecase.NewAppointmentUsecase(transactor, log, appointmentRepo, intentRepo, notifier, auditService)
	c.Payment = usecase.NewPaymentUsecase(transactor, log, appointmentRepo, walletRepo, transactionRepo, intentRepo, paymentGateway, notifier, publisher, enqueuer, auditService, currency, cfg.Payment.CallbackURL, reminderLead)
	c.Wallet = usecase.NewWalletUsecase(transactor, log, walletRepo, transactionRepo, paymentGateway, notifier, publisher, auditService, currency, cfg.Payment.CallbackURL)
	c.Notification = usecase.NewNotificationUsecase(transactor, log, notificationRepo, profileRepo, notifier, hub, enqueuer, auditService, cfg.Notification.BroadcastBatchSize)
	c.Video = usecase.NewVideoUsecase(transactor, log, appointmentRepo, videoRepo, cfg.Video)
	c.Card = usecase.NewCardUsecase(transactor, log, cardRepo, auditService)
	c.Admin = usecase.NewAdminUsecase(transactor, log, profileRepo, bookingRepo, appointmentRepo, transactionRepo)
	c.AuditLog = usecase.NewAuditLogUsecase(transactor, log, auditLogRepo)

	return c, nil
}

// Close closes all connections (database, redis, etc.)
func (c *Container) Close() {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			c.Log.Warnf("Failed to close queue client: %v", err)
		}
	}

	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Log.Warnf("Failed to close event publisher: %v", err)
		}
	}

	// Close Redis connection
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	// Close database connection
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
