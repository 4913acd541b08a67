package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Payment      PaymentConfig
	Kafka        KafkaConfig
	Queue        QueueConfig
	Storage      StorageConfig
	Video        VideoConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
}

type AppConfig struct {
	Name     string
	Port     string
	Env      string
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type PaymentConfig struct {
	Provider    string
	Currency    string
	CallbackURL string
	HTTPTimeout time.Duration
	Paystack    PaystackConfig
	Stripe      StripeConfig
}

type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	ClientID    string
	TopicPrefix string
}

type QueueConfig struct {
	RedisDB     int
	Concurrency int
}

type StorageConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type VideoConfig struct {
	Domain    string
	ScriptURL string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
	// TrustedProxies lists IPs or CIDRs whose X-Forwarded-For is honoured.
	TrustedProxies []string
}

type NotificationConfig struct {
	BroadcastBatchSize int
	ReminderLead       time.Duration
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// DSN builds the postgres connection string used by both GORM and golang-migrate.
func (c DBConfig) DSN() string {
	return "host=" + c.Host + " user=" + c.User + " password=" + c.Password +
		" dbname=" + c.Name + " port=" + c.Port + " sslmode=" + c.SSLMode + " TimeZone=UTC"
}

// URL builds the postgres URL form expected by golang-migrate.
func (c DBConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Name + "?sslmode=" + c.SSLMode
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// env vars alone are enough in containers
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "theralink")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("PAYMENT_PROVIDER", "paystack")
	v.SetDefault("PAYMENT_CURRENCY", "NGN")
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("KAFKA_CLIENT_ID", "theralink")
	v.SetDefault("KAFKA_TOPIC_PREFIX", "theralink")
	v.SetDefault("QUEUE_REDIS_DB", 1)
	v.SetDefault("QUEUE_CONCURRENCY", 10)
	v.SetDefault("CLOUDINARY_FOLDER", "avatars")
	v.SetDefault("VIDEO_DOMAIN", "meet.jit.si")
	v.SetDefault("VIDEO_SCRIPT_URL", "https://meet.jit.si/external_api.js")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("NOTIFICATION_BROADCAST_BATCH_SIZE", 500)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  parseDuration(v.GetString("JWT_ACCESS_EXPIRY"), 15*time.Minute),
			RefreshExpiry: parseDuration(v.GetString("JWT_REFRESH_EXPIRY"), 7*24*time.Hour),
		},
		Payment: PaymentConfig{
			Provider:    strings.ToLower(v.GetString("PAYMENT_PROVIDER")),
			Currency:    strings.ToUpper(v.GetString("PAYMENT_CURRENCY")),
			CallbackURL: v.GetString("PAYMENT_CALLBACK_URL"),
			HTTPTimeout: parseDuration(v.GetString("PAYMENT_HTTP_TIMEOUT"), 30*time.Second),
			Paystack: PaystackConfig{
				SecretKey: v.GetString("PAYSTACK_SECRET_KEY"),
				BaseURL:   v.GetString("PAYSTACK_BASE_URL"),
			},
			Stripe: StripeConfig{
				SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
				WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			},
		},
		Kafka: KafkaConfig{
			Enabled:     v.GetBool("KAFKA_ENABLED"),
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			ClientID:    v.GetString("KAFKA_CLIENT_ID"),
			TopicPrefix: v.GetString("KAFKA_TOPIC_PREFIX"),
		},
		Queue: QueueConfig{
			RedisDB:     v.GetInt("QUEUE_REDIS_DB"),
			Concurrency: v.GetInt("QUEUE_CONCURRENCY"),
		},
		Storage: StorageConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
			Folder:    v.GetString("CLOUDINARY_FOLDER"),
		},
		Video: VideoConfig{
			Domain:    v.GetString("VIDEO_DOMAIN"),
			ScriptURL: v.GetString("VIDEO_SCRIPT_URL"),
		},
		RateLimit: RateLimitConfig{
			RPS:            v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:          v.GetInt("RATE_LIMIT_BURST"),
			TrustedProxies: splitList(v.GetString("RATE_LIMIT_TRUSTED_PROXIES")),
		},
		Notification: NotificationConfig{
			BroadcastBatchSize: v.GetInt("NOTIFICATION_BROADCAST_BATCH_SIZE"),
			ReminderLead:       parseDuration(v.GetString("NOTIFICATION_REMINDER_LEAD"), 15*time.Minute),
		},
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isMissingFile(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no such file")
}
