package smtp

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Diagnosis codes attached to a DispatchError.
const (
	ReasonTimeout          = "timeout"
	ReasonCanceled         = "canceled"
	ReasonDial             = "dial"
	ReasonTLS              = "tls"
	ReasonAuth             = "auth"
	ReasonRateLimited      = "rate_limited"
	ReasonInvalidRecipient = "invalid_recipient"
	ReasonRejected         = "rejected"
	ReasonNetwork          = "network"
	ReasonUnknown          = "unknown"
)

// Diagnose classifies an SMTP failure from its error chain and message text.
func Diagnose(err error) string {
	if err == nil {
		return ReasonUnknown
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "timeout"):
		return ReasonTimeout
	case strings.Contains(s, "connection refused"),
		strings.Contains(s, "no such host"),
		strings.Contains(s, "dial tcp"):
		return ReasonDial
	case strings.Contains(s, "x509:"),
		strings.Contains(s, "tls") && (strings.Contains(s, "handshake") || strings.Contains(s, "certificate")),
		strings.Contains(s, "starttls"):
		return ReasonTLS
	case strings.Contains(s, "5.7.8"), strings.Contains(s, "535"),
		strings.Contains(s, "username and password not accepted"),
		strings.Contains(s, "authentication failed"):
		return ReasonAuth
	case strings.Contains(s, "4.7.0"), strings.Contains(s, "421"), strings.Contains(s, "451"),
		strings.Contains(s, "rate limit"), strings.Contains(s, "try again later"):
		return ReasonRateLimited
	case strings.Contains(s, "5.1.1"), strings.Contains(s, "user unknown"),
		strings.Contains(s, "mailbox not found"):
		return ReasonInvalidRecipient
	case strings.Contains(s, "5.7.1"), strings.Contains(s, "message rejected"),
		strings.Contains(s, "dmarc"), strings.Contains(s, "spf"):
		return ReasonRejected
	}
	if errors.As(err, &ne) {
		return ReasonNetwork
	}
	return ReasonUnknown
}
