package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/go-email-otp/internal/config"
	"github.com/go-email-otp/internal/domain"
	"github.com/go-email-otp/internal/metrics"
	"github.com/go-email-otp/internal/pkg/id"
	"github.com/go-email-otp/internal/pkg/logger"
	mail "github.com/go-mail/mail"
	"go.uber.org/zap"
)

// Mailer sends emails.
type Mailer interface {
	// SendEmail delivers a multipart/alternative message with text and HTML parts.
	SendEmail(ctx context.Context, to, subject, textBody, htmlBody string) error
	// Check connects and authenticates without sending anything.
	Check(ctx context.Context) error
}

// Settings are the fixed transport parameters of a mailer.
type Settings struct {
	Host        string
	Port        int
	Security    string // config.SecuritySSL | config.SecuritySTARTTLS
	SenderName  string
	SenderEmail string
	Username    string
	Password    string
	Timeout     time.Duration
}

type mailer struct {
	s       Settings
	log     *zap.Logger
	deliver func(d *mail.Dialer, m ...*mail.Message) error
	probe   func(d *mail.Dialer) error
}

func NewMailer(cfg *config.Config) Mailer {
	return newMailer(Settings{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Security:    cfg.SMTPSecurity,
		SenderName:  cfg.SenderName,
		SenderEmail: cfg.SenderEmail,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		Timeout:     cfg.SMTPTimeout,
	})
}

func newMailer(s Settings) *mailer {
	// App-password UIs show the secret in spaced groups; the spaces are not part of it.
	s.Password = strings.Join(strings.Fields(s.Password), "")
	s.Username = strings.TrimSpace(s.Username)
	if s.SenderEmail == "" {
		s.SenderEmail = s.Username
	}
	if s.Security != config.SecuritySTARTTLS {
		s.Security = config.SecuritySSL
	}
	if s.Timeout <= 0 {
		s.Timeout = 20 * time.Second
	}
	return &mailer{
		s: s,
		log: logger.Named("smtp").With(
			zap.String("host", s.Host),
			zap.Int("port", s.Port),
			zap.String("security", s.Security),
		),
		deliver: (*mail.Dialer).DialAndSend,
		probe: func(d *mail.Dialer) error {
			sc, err := d.Dial()
			if err != nil {
				return err
			}
			return sc.Close()
		},
	}
}

func (m *mailer) SendEmail(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if err := m.ready(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.s.SenderEmail, m.s.SenderName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", id.MessageID(m.s.Host))
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	d := m.dialer()
	ctx, cancel := context.WithTimeout(ctx, m.budget())
	defer cancel()
	start := time.Now()
	err := run(ctx, func() error { return m.deliver(d, msg) })
	if err != nil {
		metrics.DispatchDuration.WithLabelValues(metrics.ResultDispatchFailed).Observe(time.Since(start).Seconds())
		derr := m.dispatchError(err)
		m.log.Error("smtp send failed", zap.String("to", to), zap.String("reason", derr.Reason), zap.Error(err))
		return derr
	}
	metrics.DispatchDuration.WithLabelValues(metrics.ResultSent).Observe(time.Since(start).Seconds())
	m.log.Info("email sent", zap.String("to", to), zap.Duration("took", time.Since(start)))
	return nil
}

func (m *mailer) Check(ctx context.Context) error {
	if err := m.ready(); err != nil {
		return err
	}
	d := m.dialer()
	ctx, cancel := context.WithTimeout(ctx, m.budget())
	defer cancel()
	if err := run(ctx, func() error { return m.probe(d) }); err != nil {
		derr := m.dispatchError(err)
		m.log.Warn("smtp check failed", zap.String("reason", derr.Reason), zap.Error(err))
		return derr
	}
	m.log.Info("smtp check passed")
	return nil
}

func (m *mailer) ready() error {
	if m.s.Username == "" || m.s.Password == "" {
		return fmt.Errorf("SMTP credentials not set, configure SMTP_USER and SMTP_PASS: %w", domain.ErrNotConfigured)
	}
	return nil
}

func (m *mailer) dialer() *mail.Dialer {
	d := mail.NewDialer(m.s.Host, m.s.Port, m.s.Username, m.s.Password)
	d.Timeout = m.s.Timeout
	// A failed send is reported, never redialed.
	d.RetryFailure = false
	d.TLSConfig = &tls.Config{ServerName: m.s.Host}
	if m.s.Security == config.SecuritySSL {
		d.SSL = true
	} else {
		d.SSL = false
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}
	return d
}

// budget caps one dispatch: the dial and the session are each bounded by Timeout.
func (m *mailer) budget() time.Duration {
	return 2 * m.s.Timeout
}

func (m *mailer) dispatchError(err error) *domain.DispatchError {
	return &domain.DispatchError{
		Host:     m.s.Host,
		Port:     m.s.Port,
		Security: m.s.Security,
		Reason:   Diagnose(err),
		Err:      err,
	}
}

// run executes fn off the calling goroutine so ctx cancellation and the
// dispatch budget are honored even if the transport stalls.
func run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
