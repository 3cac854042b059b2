package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// SMTP transport security modes.
const (
	SecuritySSL      = "ssl"
	SecuritySTARTTLS = "starttls"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	AppName  string
	LogLevel string

	OTPTTL       time.Duration
	OTPLength    int
	OTPRetention time.Duration // how long an expired code is kept around to answer "expired"

	SMTPHost     string
	SMTPPort     int
	SMTPSecurity string // "ssl" | "starttls"
	SMTPUsername string
	SMTPPassword string
	SMTPTimeout  time.Duration
	SenderName   string
	SenderEmail  string

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	security := strings.ToLower(strings.TrimSpace(getEnv("SMTP_SECURITY", "")))
	if security != SecuritySSL && security != SecuritySTARTTLS {
		if getEnvBool("SMTP_USE_SSL", true) {
			security = SecuritySSL
		} else {
			security = SecuritySTARTTLS
		}
	}
	defaultPort := 465
	if security == SecuritySTARTTLS {
		defaultPort = 587
	}

	appName := getEnv("APP_NAME", "CIVORAA")
	user := getEnv("SMTP_USER", "")

	return &Config{
		AppPort:  getEnv("APP_PORT", getEnv("PORT", "8000")),
		AppEnv:   getEnv("APP_ENV", "development"),
		AppName:  appName,
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OTPTTL:       time.Duration(getEnvInt("OTP_TTL_SECONDS", 600)) * time.Second,
		OTPLength:    getEnvInt("OTP_LENGTH", 6),
		OTPRetention: time.Duration(getEnvInt("OTP_RETENTION_SECONDS", 3600)) * time.Second,

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", defaultPort),
		SMTPSecurity: security,
		SMTPUsername: user,
		SMTPPassword: getEnv("SMTP_PASS", ""),
		SMTPTimeout:  time.Duration(getEnvInt("SMTP_TIMEOUT_SECONDS", 20)) * time.Second,
		SenderName:   getEnv("SENDER_NAME", firstNonEmpty(user, appName)),
		SenderEmail:  getEnv("SENDER_EMAIL", user),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// IsProduction reports whether the service runs with production logging.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.AppEnv) {
	case "prod", "production":
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
