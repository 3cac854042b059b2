package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotConfigured = errors.New("mail transport not configured")
	ErrNotFound      = errors.New("not found")
	ErrExpired       = errors.New("expired")
	ErrMismatch      = errors.New("code mismatch")
)

// DispatchError reports a failed hand-off to the mail transport together with
// the connection settings that were in use.
type DispatchError struct {
	Host     string
	Port     int
	Security string
	Reason   string // diagnosis code, e.g. "timeout", "auth", "dial"
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("smtp send failed (host=%s, port=%d, security=%s, reason=%s): %v",
		e.Host, e.Port, e.Security, e.Reason, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
