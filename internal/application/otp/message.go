package otp

import (
	"bytes"
	"fmt"
	htemplate "html/template"
	ttemplate "text/template"
	"time"
)

// MessageVars are the values substituted into the verification email.
type MessageVars struct {
	Brand      string
	SenderName string
	Email      string
	Code       string
	ExpiresIn  string // human readable, derived from the configured TTL
}

const subjectTmpl = `Your {{.Brand}} Verification Code`

const textTmpl = `Your one-time verification code is: {{.Code}}

This code expires in {{.ExpiresIn}}.

If you did not request this, you can ignore this email.
`

const htmlTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Your {{.Brand}} Verification Code</title>
  <style>
    body { background:#0A0A0A; color:#E5E7EB; font-family: Inter, system-ui, -apple-system, Segoe UI, Roboto, sans-serif; margin:0; padding:24px; }
    .card { max-width:560px; margin:0 auto; background:#111111; border:1px solid #1A1A1A; border-radius:16px; padding:24px; }
    .brand { margin-bottom:16px; color:#9DA3AF; font-size:12px; text-transform:uppercase; letter-spacing:0.08em; }
    .title { font-size:22px; font-weight:700; margin:0 0 8px; color:#FFFFFF; }
    .subtitle { font-size:14px; color:#9DA3AF; margin:0 0 20px; }
    .code { display:inline-block; font-size:24px; font-weight:800; letter-spacing:0.2em; background:#0A0A0A; color:#FFFFFF; padding:12px 16px; border-radius:12px; border:1px solid #1A1A1A; }
    .cta { margin-top:20px; font-size:12px; color:#9DA3AF; }
    .footer { margin-top:24px; font-size:12px; color:#6B7280; }
    .accent { color:#F97171; }
  </style>
</head>
<body>
  <div class="card">
    <div class="brand">{{.SenderName}} &bull; {{.Brand}}</div>
    <h1 class="title">Your Verification Code</h1>
    <p class="subtitle">Use this code to verify your email. It expires in <span class="accent">{{.ExpiresIn}}</span>.</p>
    <div class="code">{{.Code}}</div>
    <p class="cta">If you didn't request this, you can ignore this email.</p>
    <div class="footer">Sent to {{.Email}}. Do not share this code.</div>
  </div>
</body>
</html>
`

var (
	subjectTemplate = ttemplate.Must(ttemplate.New("subject").Parse(subjectTmpl))
	textTemplate    = ttemplate.Must(ttemplate.New("text").Parse(textTmpl))
	htmlTemplate    = htemplate.Must(htemplate.New("html").Parse(htmlTmpl))
)

// Rendered is a ready-to-send message.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// RenderMessage renders the verification email for vars.
func RenderMessage(vars MessageVars) (Rendered, error) {
	var subj, text, html bytes.Buffer
	if err := subjectTemplate.Execute(&subj, vars); err != nil {
		return Rendered{}, fmt.Errorf("render subject: %w", err)
	}
	if err := textTemplate.Execute(&text, vars); err != nil {
		return Rendered{}, fmt.Errorf("render text body: %w", err)
	}
	if err := htmlTemplate.Execute(&html, vars); err != nil {
		return Rendered{}, fmt.Errorf("render html body: %w", err)
	}
	return Rendered{Subject: subj.String(), Text: text.String(), HTML: html.String()}, nil
}

// HumanizeTTL renders a TTL the way it is shown to users, e.g. "10 minutes".
// Partial units round down so the notice never promises more time than the code has.
func HumanizeTTL(d time.Duration) string {
	switch {
	case d <= 0:
		return "0 seconds"
	case d < time.Minute:
		return plural(max(1, int(d/time.Second)), "second")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
