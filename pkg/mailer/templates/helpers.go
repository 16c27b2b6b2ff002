package templates

import (
	"net/url"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

func WithExpiresIn(text string) Option {
	return func(d *EmailData) { d.ExpiresIn = text }
}

// Branding carries the fields shared by every email.
type Branding struct {
	AppName     string
	CompanyName string
	SupportURL  string
}

// VerificationLink appends token as the "token" query parameter of base.
func VerificationLink(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func NewVerifyEmailData(b Branding, name, email, verifyURL string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		RecipientEmail: email,
		AppName:        b.AppName,
		CompanyName:    b.CompanyName,
		SupportURL:     b.SupportURL,
		VerifyURL:      verifyURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
