package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port       string
	Env        string
	CORSOrigin string

	Database  Database
	JWT       JWT
	RateLimit RateLimit
	Payments  Payments

	TaxRate       decimal.Decimal
	MetricsAPIKey string
}

type Database struct {
	URL        string
	Driver     string // postgres | sqlite
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SQLitePath string
}

type JWT struct {
	Secret string
	TTL    time.Duration
}

type RateLimit struct {
	Window      time.Duration
	MaxRequests int
}

type Payments struct {
	// DemoMode simulates gateway success when a non-cash payment
	// carries no confirmation id.
	DemoMode bool

	StripeSecretKey string
	StripeAPIURL    string

	RazorpayKeyID  string
	RazorpaySecret string
	RazorpayAPIURL string

	TelrStoreID       int
	TelrAuthKey       string
	TelrAPIURL        string
	TelrWebhookSecret string
	TelrTestMode      bool
	TelrReturnURL     string
	Currency          string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:       GetString("PORT", "5000"),
		Env:        GetString("ENV", "development"),
		CORSOrigin: GetString("CORS_ORIGIN", "http://localhost:3000"),
		Database: Database{
			URL:        GetString("DATABASE_URL", ""),
			Driver:     GetString("DB_DRIVER", "postgres"),
			Host:       GetString("DB_HOST", "localhost"),
			Port:       GetString("DB_PORT", "5432"),
			User:       GetString("DB_USER", "postgres"),
			Password:   GetString("DB_PASSWORD", ""),
			Name:       GetString("DB_NAME", "restaurant_pos"),
			SQLitePath: GetString("DB_SQLITE_PATH", "restaurant_pos.db"),
		},
		JWT: JWT{
			Secret: GetString("JWT_SECRET", ""),
			TTL:    GetDuration("JWT_TTL", 7*24*time.Hour),
		},
		RateLimit: RateLimit{
			Window:      GetDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			MaxRequests: GetInt("RATE_LIMIT_MAX_REQUESTS", 100),
		},
		Payments: Payments{
			DemoMode:          GetBool("PAYMENT_DEMO_MODE", false),
			StripeSecretKey:   GetString("STRIPE_SECRET_KEY", ""),
			StripeAPIURL:      GetString("STRIPE_API_URL", "https://api.stripe.com"),
			RazorpayKeyID:     GetString("RAZORPAY_KEY_ID", ""),
			RazorpaySecret:    GetString("RAZORPAY_SECRET", ""),
			RazorpayAPIURL:    GetString("RAZORPAY_API_URL", "https://api.razorpay.com"),
			TelrStoreID:       GetInt("TELR_STORE_ID", 0),
			TelrAuthKey:       GetString("TELR_AUTH_KEY", ""),
			TelrAPIURL:        GetString("TELR_API_URL", "https://secure.telr.com/gateway/order.json"),
			TelrWebhookSecret: GetString("TELR_WEBHOOK_SECRET", ""),
			TelrTestMode:      GetBool("TELR_TEST_MODE", true),
			TelrReturnURL:     GetString("TELR_RETURN_URL", "http://localhost:3000/payments"),
			Currency:          GetString("CURRENCY", "NPR"),
		},
		TaxRate:       GetDecimal("TAX_RATE", decimal.RequireFromString("0.13")),
		MetricsAPIKey: GetString("METRICS_API_KEY", ""),
	}
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func GetString(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

func GetInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func GetBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

func GetDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return fallback
	}
	return d
}
