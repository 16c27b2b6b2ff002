package application_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/account-service/internal/application"
	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/infrastructure/memory"
	"github.com/oksasatya/account-service/pkg/helpers"
	tpl "github.com/oksasatya/account-service/pkg/mailer/templates"
)

const verifyURL = "http://localhost:8080/api/auth/verify-email"

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Send(ctx context.Context, to, subject, text, html string) error {
	args := m.Called(ctx, to, subject, text, html)
	return args.Error(0)
}

type mockUploader struct{ mock.Mock }

func (m *mockUploader) UploadProfilePicture(ctx context.Context, userID, filename, contentType string, size int64, r io.Reader) (string, error) {
	args := m.Called(ctx, userID, filename, contentType, size, r)
	return args.String(0), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []application.ProfileEvent
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, body.(application.ProfileEvent))
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc      *application.Service
	repo     *memory.UserRepository
	jwt      *helpers.JWTManager
	notifier *mockNotifier
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newFixture(t *testing.T, verificationTTL time.Duration, opts ...application.Option) *fixture {
	t.Helper()
	repo := memory.NewUserRepository()
	jwt := helpers.NewJWTManager("test-secret", time.Hour, verificationTTL)
	notifier := &mockNotifier{}
	svc := application.NewService(repo, jwt, notifier, quietLogger(), application.Settings{
		VerifyEmailURL: verifyURL,
		Branding:       tpl.Branding{AppName: "New Novel"},
		CacheTTL:       time.Minute,
		ESIndex:        "profiles",
		MaxUploadBytes: 5 << 20,
	}, opts...)
	return &fixture{svc: svc, repo: repo, jwt: jwt, notifier: notifier}
}

func aliceInput() application.RegisterInput {
	return application.RegisterInput{
		Name:     "Alice",
		Email:    "alice@x.com",
		Password: "secret1",
		Gender:   "female",
		DOB:      "1990-04-01",
	}
}

// seedUser stores a verified user directly in the repository.
func seedUser(t *testing.T, f *fixture, email, username string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword("secret1")
	require.NoError(t, err)
	u := &entity.User{
		Name:            "User " + email,
		Email:           email,
		PasswordHash:    hash,
		Gender:          entity.GenderOther,
		DOB:             time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Profile:         entity.Profile{Username: username, Bio: "hello", Location: "Earth"},
		IsEmailVerified: true,
	}
	require.NoError(t, f.repo.Insert(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }
