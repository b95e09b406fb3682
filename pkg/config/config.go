package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// DB
	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`
	// JWT
	JWTSecret       string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin    int    `envconfig:"JWT_EXPIRE_MIN" default:"60"`
	RefreshExpireHr int    `envconfig:"REFRESH_EXPIRE_HR" default:"720"`
	// Network
	HTTPAddr   string `envconfig:"HTTP_ADDR" default:":8080"`
	AppBaseURL string `envconfig:"APP_BASE_URL" default:"http://localhost:8080"`
	Env        string `envconfig:"APP_ENV" default:"development"`

	// Google OAuth (optional; credentials login works without it)
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL"`

	// Omise payment gateway (optional; charge endpoints report "not configured")
	OmisePublicKey string `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey string `envconfig:"OMISE_SECRET_KEY"`

	// RabbitMQ
	RabbitURL       string `envconfig:"RABBIT_URL" required:"true"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
	PaymentExchange string `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`
	PaymentQueue    string `envconfig:"BOOKING_PAYMENT_QUEUE" default:"booking.payment.q"`

	// Redis report cache (optional; empty addr disables caching)
	RedisAddr         string `envconfig:"REDIS_ADDR"`
	ReportCacheTTLSec int    `envconfig:"REPORT_CACHE_TTL_SEC" default:"300"`

	// Resend email API (optional; notify worker falls back to console)
	ResendAPIKey string `envconfig:"RESEND_API_KEY"`
	EmailFrom    string `envconfig:"EMAIL_FROM" default:"Care.xyz <onboarding@resend.dev>"`
}

// Load reads .env if present, then the process environment. Missing
// required values abort startup.
func Load() (App, error) {
	_ = godotenv.Load()
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
