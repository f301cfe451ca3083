package usecase

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"
)

// ResetEmail is a rendered password reset message.
type ResetEmail struct {
	Subject string
	Text    string
	HTML    string
}

type resetEmailData struct {
	AppName          string
	Code             string
	ExpiresInMinutes int
}

var resetEmailText = template.Must(template.New("reset_text").Parse(
	`Your {{.AppName}} password reset OTP is {{.Code}}. It will expire in {{.ExpiresInMinutes}} minutes. If you did not request this, please ignore this email.`,
))

var resetEmailHTML = htmltemplate.Must(htmltemplate.New("reset_html").Parse(`<div style="font-family: system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; line-height: 1.6; color: #111827;">
  <h2 style="color: #111827; margin-bottom: 0.5rem;">{{.AppName}} Password Reset</h2>
  <p>We received a request to reset the password for your {{.AppName}} account.</p>
  <p style="margin: 1.5rem 0; font-size: 1.25rem;">
    Your one-time password (OTP) is:
    <strong style="display: inline-block; padding: 0.5rem 1rem; border-radius: 0.375rem; background-color: #111827; color: #F9FAFB; letter-spacing: 0.2em;">{{.Code}}</strong>
  </p>
  <p>This code will expire in <strong>{{.ExpiresInMinutes}} minutes</strong> and can be used only once.</p>
  <p>If you did not request a password reset, you can safely ignore this email. Someone may have entered your email address by mistake.</p>
  <p style="margin-top: 2rem;">Best regards,<br />The {{.AppName}} Team</p>
</div>
`))

// RenderResetEmail builds the subject, plain text and HTML bodies carrying code.
// The expiry is rounded up to whole minutes.
func RenderResetEmail(appName, code string, ttl time.Duration) (ResetEmail, error) {
	if appName == "" {
		appName = defaultAppName
	}
	minutes := int((ttl + time.Minute - 1) / time.Minute)
	data := resetEmailData{AppName: appName, Code: code, ExpiresInMinutes: minutes}

	var text, html bytes.Buffer
	if err := resetEmailText.Execute(&text, data); err != nil {
		return ResetEmail{}, fmt.Errorf("render reset email text: %w", err)
	}
	if err := resetEmailHTML.Execute(&html, data); err != nil {
		return ResetEmail{}, fmt.Errorf("render reset email html: %w", err)
	}

	return ResetEmail{
		Subject: appName + " - Password Reset OTP",
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
