package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-email-otp/internal/domain"
	"github.com/go-email-otp/internal/infrastructure/smtp"
	"github.com/go-email-otp/internal/metrics"
	"github.com/go-email-otp/internal/pkg/keylock"
	"github.com/go-email-otp/internal/pkg/logger"
	"github.com/go-email-otp/internal/pkg/otpcode"
	"github.com/go-email-otp/internal/pkg/validate"
	"go.uber.org/zap"
)

// CodeStore holds at most one pending code per identifier.
type CodeStore interface {
	Put(ctx context.Context, identifier, code string, ttl time.Duration) (domain.PendingCode, error)
	Get(ctx context.Context, identifier string) (*domain.PendingCode, error)
	Remove(ctx context.Context, identifier string) error
}

type RequestCodeInput struct {
	Email string `json:"email" validate:"required"`
}

type VerifyCodeInput struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type Service interface {
	// RequestCode issues a fresh code for the email and mails it. The code is
	// only kept if the mail transport accepted the message.
	RequestCode(ctx context.Context, in RequestCodeInput) error
	// VerifyCode consumes the pending code if it matches and has not expired.
	VerifyCode(ctx context.Context, in VerifyCodeInput) error
}

// ServiceDeps wires the service. Generate and Now default to otpcode.New and time.Now.
type ServiceDeps struct {
	Store      CodeStore
	Mailer     smtp.Mailer
	Generate   func(length int) string
	Now        func() time.Time
	TTL        time.Duration
	CodeLength int
	Brand      string
	SenderName string
}

type service struct {
	store      CodeStore
	mailer     smtp.Mailer
	generate   func(int) string
	now        func() time.Time
	ttl        time.Duration
	codeLength int
	brand      string
	senderName string
	locks      *keylock.Striped
	log        *zap.Logger
}

func NewService(d ServiceDeps) Service {
	s := &service{
		store:      d.Store,
		mailer:     d.Mailer,
		generate:   d.Generate,
		now:        d.Now,
		ttl:        d.TTL,
		codeLength: d.CodeLength,
		brand:      d.Brand,
		senderName: d.SenderName,
		locks:      keylock.New(keylock.DefaultStripes),
		log:        logger.Named("otp"),
	}
	if s.generate == nil {
		s.generate = otpcode.New
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.ttl <= 0 {
		s.ttl = 10 * time.Minute
	}
	if s.codeLength <= 0 {
		s.codeLength = otpcode.DefaultLength
	}
	if s.senderName == "" {
		s.senderName = s.brand
	}
	return s
}

func (s *service) RequestCode(ctx context.Context, in RequestCodeInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		metrics.CodeRequests.WithLabelValues(metrics.ResultInvalid).Inc()
		return fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}

	code := s.generate(s.codeLength)
	msg, err := RenderMessage(MessageVars{
		Brand:      s.brand,
		SenderName: s.senderName,
		Email:      in.Email,
		Code:       code,
		ExpiresIn:  HumanizeTTL(s.ttl),
	})
	if err != nil {
		metrics.CodeRequests.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	res, err := s.reserve(ctx, in.Email, code)
	if err != nil {
		metrics.CodeRequests.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	if err := s.mailer.SendEmail(ctx, in.Email, msg.Subject, msg.Text, msg.HTML); err != nil {
		if cerr := res.compensate(context.WithoutCancel(ctx)); cerr != nil {
			s.log.Error("failed to roll back pending code", zap.String("email", in.Email), zap.Error(cerr))
			err = errors.Join(err, cerr)
		}
		if errors.Is(err, domain.ErrNotConfigured) {
			metrics.CodeRequests.WithLabelValues(metrics.ResultNotConfigured).Inc()
		} else {
			metrics.CodeRequests.WithLabelValues(metrics.ResultDispatchFailed).Inc()
		}
		return fmt.Errorf("send verification code: %w", err)
	}

	res.commit()
	metrics.CodeRequests.WithLabelValues(metrics.ResultSent).Inc()
	return nil
}

func (s *service) VerifyCode(ctx context.Context, in VerifyCodeInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.OTP = strings.TrimSpace(in.OTP)
	if err := validate.Struct(in); err != nil {
		metrics.Verifications.WithLabelValues(metrics.ResultInvalid).Inc()
		return fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}

	unlock := s.locks.Lock(in.Email)
	defer unlock()

	rec, err := s.store.Get(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.Verifications.WithLabelValues(metrics.ResultNotFound).Inc()
		return fmt.Errorf("no pending code, request a new one: %w", domain.ErrNotFound)
	}
	if err != nil {
		metrics.Verifications.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("load pending code: %w", err)
	}

	if rec.Expired(s.now()) {
		if err := s.store.Remove(ctx, in.Email); err != nil {
			s.log.Warn("failed to delete expired code", zap.String("email", in.Email), zap.Error(err))
		}
		metrics.Verifications.WithLabelValues(metrics.ResultExpired).Inc()
		return fmt.Errorf("code expired, request a new one: %w", domain.ErrExpired)
	}

	// The record stays so the user can retry until it expires.
	if subtle.ConstantTimeCompare([]byte(in.OTP), []byte(rec.Code)) != 1 {
		metrics.Verifications.WithLabelValues(metrics.ResultMismatch).Inc()
		return fmt.Errorf("invalid verification code: %w", domain.ErrMismatch)
	}

	if err := s.store.Remove(ctx, in.Email); err != nil {
		metrics.Verifications.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("consume pending code: %w", err)
	}
	metrics.Verifications.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info("code verified", zap.String("email", in.Email))
	return nil
}

// reservation is a pending code written ahead of dispatch. Exactly one of
// commit or compensate is called once the dispatch outcome is known.
type reservation struct {
	s   *service
	rec domain.PendingCode
}

func (s *service) reserve(ctx context.Context, identifier, code string) (*reservation, error) {
	unlock := s.locks.Lock(identifier)
	defer unlock()

	rec, err := s.store.Put(ctx, identifier, code, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("store pending code: %w", err)
	}
	return &reservation{s: s, rec: rec}, nil
}

func (r *reservation) commit() {
	r.s.log.Info("code issued",
		zap.String("email", r.rec.Identifier),
		zap.Time("expires_at", r.rec.ExpiresAt),
	)
}

// compensate removes the reserved record unless a newer request has already replaced it.
func (r *reservation) compensate(ctx context.Context) error {
	unlock := r.s.locks.Lock(r.rec.Identifier)
	defer unlock()

	cur, err := r.s.store.Get(ctx, r.rec.Identifier)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load reserved code: %w", err)
	}
	if cur.Code != r.rec.Code || !cur.ExpiresAt.Equal(r.rec.ExpiresAt) {
		return nil
	}
	if err := r.s.store.Remove(ctx, r.rec.Identifier); err != nil {
		return fmt.Errorf("remove reserved code: %w", err)
	}
	r.s.log.Debug("pending code rolled back", zap.String("email", r.rec.Identifier))
	return nil
}
