package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"time"
)

const (
	resetSubject = "Reset your password"
	resetTag     = "password_reset"
)

var resetHTML = template.Must(template.New("reset").Parse(
	`<p>We received a request to reset your password.</p>` +
		`<p>The link below is valid for {{.Validity}} and can be used once:</p>` +
		`<p><a href="{{.Link}}">{{.Link}}</a></p>` +
		`<p>If you did not ask for this, you can ignore this email.</p>`,
))

const resetText = "We received a request to reset your password.\n\n" +
	"Open this link within %s to choose a new one. It can be used once:\n\n%s\n\n" +
	"If you did not ask for this, you can ignore this email.\n"

// ResetLink builds the URL a user follows to submit a new password.
func ResetLink(baseURL, token string) string {
	return baseURL + "/users/reset-password?token=" + url.QueryEscape(token)
}

// PasswordReset renders the reset email addressed to `to`.
func PasswordReset(to, baseURL, token string, validity time.Duration) (Message, error) {
	link := ResetLink(baseURL, token)
	within := humanize(validity)

	var buf bytes.Buffer
	err := resetHTML.Execute(&buf, struct {
		Link     string
		Validity string
	}{
		Link:     link,
		Validity: within,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render reset email: %w", err)
	}

	return Message{
		To:      to,
		Subject: resetSubject,
		HTML:    buf.String(),
		Text:    fmt.Sprintf(resetText, within, link),
		Tag:     resetTag,
	}, nil
}

func humanize(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
