package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_PORT", "PORT", "APP_ENV", "APP_NAME", "LOG_LEVEL",
		"OTP_TTL_SECONDS", "OTP_LENGTH", "OTP_RETENTION_SECONDS",
		"SMTP_HOST", "SMTP_PORT", "SMTP_SECURITY", "SMTP_USE_SSL", "SMTP_USER", "SMTP_PASS",
		"SMTP_TIMEOUT_SECONDS", "SENDER_NAME", "SENDER_EMAIL", "ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 6, cfg.OTPLength)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, SecuritySSL, cfg.SMTPSecurity)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, 20*time.Second, cfg.SMTPTimeout)
	assert.Equal(t, "CIVORAA", cfg.SenderName)
	assert.Empty(t, cfg.SenderEmail)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_StartTLSDefaultsTo587(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTP_USE_SSL", "false")

	cfg := Load()
	assert.Equal(t, SecuritySTARTTLS, cfg.SMTPSecurity)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestLoad_SecurityOverridesUseSSL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTP_USE_SSL", "true")
	t.Setenv("SMTP_SECURITY", "STARTTLS")

	cfg := Load()
	assert.Equal(t, SecuritySTARTTLS, cfg.SMTPSecurity)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestLoad_ExplicitPortWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTP_PORT", "2525")

	assert.Equal(t, 2525, Load().SMTPPort)
}

func TestLoad_SenderFallsBackToUser(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTP_USER", "mailer@example.com")

	cfg := Load()
	assert.Equal(t, "mailer@example.com", cfg.SenderName)
	assert.Equal(t, "mailer@example.com", cfg.SenderEmail)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("OTP_TTL_SECONDS", "ten")
	t.Setenv("PORT", "9000")

	cfg := Load()
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "9000", cfg.AppPort)
}
