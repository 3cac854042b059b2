package http

import (
	"time"

	"github.com/go-email-otp/internal/application/otp"
	"github.com/go-email-otp/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Store  otp.CodeStore
	Mailer smtp.Mailer

	// Optional overrides, used by tests.
	Generate func(length int) string
	Now      func() time.Time
}
