package smtp

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-email-otp/internal/config"
	"github.com/go-email-otp/internal/domain"
	mail "github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	dialer *mail.Dialer
	msg    *mail.Message
	calls  int
}

func testMailer(s Settings, deliverErr error) (*mailer, *captured) {
	c := &captured{}
	m := newMailer(s)
	m.deliver = func(d *mail.Dialer, msgs ...*mail.Message) error {
		c.calls++
		c.dialer = d
		if len(msgs) > 0 {
			c.msg = msgs[0]
		}
		return deliverErr
	}
	m.probe = func(d *mail.Dialer) error {
		c.calls++
		c.dialer = d
		return deliverErr
	}
	return m, c
}

func baseSettings() Settings {
	return Settings{
		Host:        "smtp.example.com",
		Port:        465,
		Security:    config.SecuritySSL,
		SenderName:  "CIVORAA",
		SenderEmail: "noreply@example.com",
		Username:    "noreply@example.com",
		Password:    "abcd efgh ijkl mnop",
		Timeout:     20 * time.Second,
	}
}

func TestSendEmail_MissingCredentials(t *testing.T) {
	s := baseSettings()
	s.Password = "   "
	m, c := testMailer(s, nil)

	err := m.SendEmail(context.Background(), "user@example.com", "subj", "text", "<p>html</p>")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotConfigured))
	assert.Zero(t, c.calls, "must not dial without credentials")

	s = baseSettings()
	s.Username = ""
	m, c = testMailer(s, nil)
	err = m.Check(context.Background())
	assert.True(t, errors.Is(err, domain.ErrNotConfigured))
	assert.Zero(t, c.calls)
}

func TestSendEmail_SSLDialer(t *testing.T) {
	m, c := testMailer(baseSettings(), nil)

	require.NoError(t, m.SendEmail(context.Background(), "user@example.com", "Your code", "code 123456", "<b>123456</b>"))
	require.Equal(t, 1, c.calls)

	assert.True(t, c.dialer.SSL)
	assert.False(t, c.dialer.RetryFailure)
	assert.Equal(t, "smtp.example.com", c.dialer.Host)
	assert.Equal(t, 465, c.dialer.Port)
	assert.Equal(t, 20*time.Second, c.dialer.Timeout)
	assert.Equal(t, "abcdefghijklmnop", c.dialer.Password)
	assert.Equal(t, "smtp.example.com", c.dialer.TLSConfig.ServerName)
}

func TestSendEmail_StartTLSDialer(t *testing.T) {
	s := baseSettings()
	s.Security = config.SecuritySTARTTLS
	s.Port = 587
	m, c := testMailer(s, nil)

	require.NoError(t, m.SendEmail(context.Background(), "user@example.com", "s", "t", "h"))
	assert.False(t, c.dialer.SSL)
	assert.False(t, c.dialer.RetryFailure)
	assert.Equal(t, mail.MandatoryStartTLS, c.dialer.StartTLSPolicy)
	assert.Equal(t, 587, c.dialer.Port)
}

func TestSendEmail_ComposesMultipartMessage(t *testing.T) {
	m, c := testMailer(baseSettings(), nil)
	require.NoError(t, m.SendEmail(context.Background(), "user@example.com", "Your code", "plain 123456", "<b>html 123456</b>"))

	assert.Equal(t, []string{"user@example.com"}, c.msg.GetHeader("To"))
	assert.Equal(t, []string{"Your code"}, c.msg.GetHeader("Subject"))
	require.Len(t, c.msg.GetHeader("From"), 1)
	assert.Contains(t, c.msg.GetHeader("From")[0], "noreply@example.com")
	assert.Contains(t, c.msg.GetHeader("From")[0], "CIVORAA")
	require.Len(t, c.msg.GetHeader("Message-ID"), 1)
	assert.Contains(t, c.msg.GetHeader("Message-ID")[0], "@smtp.example.com>")

	var buf bytes.Buffer
	_, err := c.msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "plain 123456")
}

func TestSendEmail_FailureCarriesContext(t *testing.T) {
	m, _ := testMailer(baseSettings(), errors.New("535 5.7.8 Username and Password not accepted"))

	err := m.SendEmail(context.Background(), "user@example.com", "s", "t", "h")
	require.Error(t, err)

	var derr *domain.DispatchError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "smtp.example.com", derr.Host)
	assert.Equal(t, 465, derr.Port)
	assert.Equal(t, config.SecuritySSL, derr.Security)
	assert.Equal(t, ReasonAuth, derr.Reason)
	assert.Contains(t, err.Error(), "host=smtp.example.com")
}

func TestSendEmail_HonorsContext(t *testing.T) {
	m := newMailer(baseSettings())
	release := make(chan struct{})
	defer close(release)
	m.deliver = func(*mail.Dialer, ...*mail.Message) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := m.SendEmail(ctx, "user@example.com", "s", "t", "h")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	var derr *domain.DispatchError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, ReasonCanceled, derr.Reason)
}

func TestCheck_ProbeFailure(t *testing.T) {
	m, c := testMailer(baseSettings(), errors.New("dial tcp: lookup smtp.example.com: no such host"))

	err := m.Check(context.Background())
	var derr *domain.DispatchError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, ReasonDial, derr.Reason)
	assert.Equal(t, 1, c.calls)
}

func TestNewMailer_FromConfig(t *testing.T) {
	cfg := &config.Config{
		SMTPHost:     "smtp.zoho.com",
		SMTPPort:     587,
		SMTPSecurity: config.SecuritySTARTTLS,
		SMTPUsername: " user@zoho.com ",
		SMTPPassword: "a b\tc",
		SMTPTimeout:  5 * time.Second,
	}
	m := NewMailer(cfg).(*mailer)
	assert.Equal(t, "abc", m.s.Password)
	assert.Equal(t, "user@zoho.com", m.s.Username)
	assert.Equal(t, "user@zoho.com", m.s.SenderEmail)
	assert.Equal(t, config.SecuritySTARTTLS, m.s.Security)
}
