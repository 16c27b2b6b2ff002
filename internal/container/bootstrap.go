package container

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/config"
	"github.com/oksasatya/account-service/internal/application"
	repo "github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/internal/infrastructure/memory"
	"github.com/oksasatya/account-service/internal/infrastructure/mongostore"
	pginfra "github.com/oksasatya/account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/account-service/pkg/helpers"
	"github.com/oksasatya/account-service/pkg/mailer"
)

// OpenUserRepository opens the credential store selected by STORE_DRIVER.
// The returned func releases the underlying connections.
func OpenUserRepository(ctx context.Context, c *config.Config, l *logrus.Logger) (repo.UserRepository, func(), error) {
	switch c.StoreDriver {
	case "postgres":
		pool, err := pginfra.NewPool(ctx, c)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pginfra.Migrate(c.PostgresDSN(), c.MigrationsDir, l); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return pginfra.NewUserRepository(pool), pool.Close, nil
	case "mongo":
		client, err := mongostore.NewClient(ctx, c.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		r := mongostore.NewUserRepository(client.Database(c.MongoDB))
		if err := r.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return r, closeFn, nil
	case "memory":
		l.Warn("using in-memory credential store; data is lost on restart")
		return memory.NewUserRepository(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
}

// NewNotifier picks the outbound mail provider. With sending disabled, mail
// is written to the log instead.
func NewNotifier(c *config.Config, l *logrus.Logger) (application.Notifier, error) {
	if !c.MailSendEnabled {
		helpers.LogInfo(l, "mail sending disabled, logging emails instead", nil)
		return mailer.NewLogSender(l), nil
	}
	switch c.MailProvider {
	case "sendgrid":
		if c.SendGridAPIKey == "" || c.SendGridSender == "" {
			return nil, fmt.Errorf("sendgrid not configured")
		}
		return mailer.NewSendGrid(c.SendGridAPIKey, c.SendGridSender, c.SendGridSenderName), nil
	case "mailgun":
		if c.MailgunDomain == "" || c.MailgunAPIKey == "" || c.MailgunSender == "" {
			return nil, fmt.Errorf("mailgun not configured")
		}
		return mailer.NewMailgun(c.MailgunDomain, c.MailgunAPIKey, c.MailgunSender), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", c.MailProvider)
	}
}
