package handler

import (
	"errors"
	"net/http"

	"github.com/go-email-otp/internal/config"
	"github.com/go-email-otp/internal/domain"
	"github.com/go-email-otp/internal/infrastructure/smtp"
)

// SMTPCheckHandler probes the configured mail transport.
type SMTPCheckHandler struct {
	mailer smtp.Mailer
	cfg    *config.Config
}

func NewSMTPCheckHandler(mailer smtp.Mailer, cfg *config.Config) *SMTPCheckHandler {
	return &SMTPCheckHandler{mailer: mailer, cfg: cfg}
}

func (h *SMTPCheckHandler) Check(w http.ResponseWriter, r *http.Request) {
	env := SMTPCheckEnvelope{
		Host:     h.cfg.SMTPHost,
		Port:     h.cfg.SMTPPort,
		Security: h.cfg.SMTPSecurity,
	}
	err := h.mailer.Check(r.Context())
	if err == nil {
		env.OK = true
		writeJSON(w, http.StatusOK, env)
		return
	}

	env.Error = err.Error()
	var derr *domain.DispatchError
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		env.Reason = "not_configured"
		writeJSON(w, http.StatusServiceUnavailable, env)
	case errors.As(err, &derr):
		env.Reason = derr.Reason
		writeJSON(w, http.StatusBadGateway, env)
	default:
		writeJSON(w, http.StatusInternalServerError, env)
	}
}
