package container

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/account-service/config"
	"github.com/oksasatya/account-service/internal/infrastructure/memory"
	"github.com/oksasatya/account-service/pkg/mailer"
)

func TestOpenUserRepository(t *testing.T) {
	logger, _ := test.NewNullLogger()

	r, closeFn, err := OpenUserRepository(context.Background(), &config.Config{StoreDriver: "memory"}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &memory.UserRepository{}, r)

	_, _, err = OpenUserRepository(context.Background(), &config.Config{StoreDriver: "sqlite"}, logger)
	assert.ErrorContains(t, err, `unknown store driver "sqlite"`)
}

func TestNewNotifier(t *testing.T) {
	logger, _ := test.NewNullLogger()

	n, err := NewNotifier(&config.Config{MailSendEnabled: false}, logger)
	require.NoError(t, err)
	assert.IsType(t, &mailer.LogSender{}, n)

	n, err = NewNotifier(&config.Config{MailSendEnabled: true, MailProvider: "sendgrid", SendGridAPIKey: "k", SendGridSender: "no-reply@example.com"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &mailer.SendGrid{}, n)

	n, err = NewNotifier(&config.Config{MailSendEnabled: true, MailProvider: "mailgun", MailgunDomain: "mg.example.com", MailgunAPIKey: "k", MailgunSender: "no-reply@example.com"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &mailer.Mailgun{}, n)

	_, err = NewNotifier(&config.Config{MailSendEnabled: true, MailProvider: "mailgun"}, logger)
	assert.Error(t, err)

	_, err = NewNotifier(&config.Config{MailSendEnabled: true, MailProvider: "ses"}, logger)
	assert.ErrorContains(t, err, "unknown mail provider")
}

func TestSettings(t *testing.T) {
	s := Settings(&config.Config{AppDisplayName: "Acme", SupportURL: "https://help.example.com", ESProfilesIndex: "profiles", UploadMaxBytes: 5 << 20})
	assert.Equal(t, "Acme", s.Branding.AppName)
	assert.Equal(t, "https://help.example.com", s.Branding.SupportURL)
	assert.Equal(t, "profiles", s.ESIndex)
	assert.Equal(t, int64(5<<20), s.MaxUploadBytes)
}
