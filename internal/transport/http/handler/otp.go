package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-email-otp/internal/application/otp"
	"github.com/go-email-otp/internal/domain"
)

// OTPHandler exposes code issuance and verification.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler { return &OTPHandler{svc: svc} }

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req otp.RequestCodeInput
	decodeLenient(r, &req)
	if err := h.svc.RequestCode(r.Context(), req); err != nil {
		status, msg := errorResponse(err)
		if errors.Is(err, domain.ErrValidation) {
			msg = "Email is required."
		}
		writeResult(w, status, msg)
		return
	}
	writeResult(w, http.StatusOK, "")
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req otp.VerifyCodeInput
	decodeLenient(r, &req)
	if err := h.svc.VerifyCode(r.Context(), req); err != nil {
		status, msg := errorResponse(err)
		if errors.Is(err, domain.ErrValidation) {
			msg = "Email and OTP are required."
		}
		writeResult(w, status, msg)
		return
	}
	writeResult(w, http.StatusOK, "")
}

// decodeLenient reads a JSON body into v. A missing or malformed body leaves v
// zeroed so the service reports the missing fields.
func decodeLenient[T any](r *http.Request, v *T) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var zero T
		*v = zero
	}
}

func errorResponse(err error) (int, string) {
	var derr *domain.DispatchError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "No OTP found. Please request a new code."
	case errors.Is(err, domain.ErrExpired):
		return http.StatusGone, "OTP expired. Please request a new code."
	case errors.Is(err, domain.ErrMismatch):
		return http.StatusBadRequest, "Invalid verification code."
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusInternalServerError, "Email delivery failed: email sending is not configured."
	case errors.As(err, &derr):
		return http.StatusInternalServerError, "Email delivery failed: " + derr.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
