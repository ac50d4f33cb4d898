package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Govind-619/TripSphere/utils"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string
	LogDir     string

	RazorpayKey           string
	RazorpaySecret        string
	RazorpayWebhookSecret string
	Currency              string

	RedisAddr          string
	RateLimitPerMinute int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// LoadConfig loads configuration from the environment. A .env file is read
// when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	rateLimit, err := intEnv("RATE_LIMIT_PER_MINUTE", utils.DefaultRateLimitPerMinute)
	if err != nil {
		return nil, err
	}
	smtpPort, err := intEnv("SMTP_PORT", utils.DefaultSMTPPort)
	if err != nil {
		return nil, err
	}

	config := &Config{
		DBHost:     getEnv("DB_HOST", utils.DefaultDBHost),
		DBPort:     getEnv("DB_PORT", utils.DefaultDBPort),
		DBUser:     getEnv("DB_USER", utils.DefaultDBUser),
		DBPassword: getEnv("DB_PASSWORD", utils.DefaultDBPassword),
		DBName:     getEnv("DB_NAME", utils.DefaultDBName),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       getEnv("PORT", utils.DefaultPort),
		Env:        getEnv("ENV", "development"),
		LogDir:     getEnv("LOG_DIR", utils.DefaultLogDir),

		RazorpayKey:           os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret:        os.Getenv("RAZORPAY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		Currency:              getEnv("PAYMENT_CURRENCY", utils.DefaultCurrency),

		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RateLimitPerMinute: rateLimit,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
	}

	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

// PaymentsConfigured reports whether Razorpay order creation can be used
func (c *Config) PaymentsConfigured() bool {
	return c.RazorpayKey != "" && c.RazorpaySecret != ""
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}
