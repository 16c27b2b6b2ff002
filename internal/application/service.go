package application

import (
	"context"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
	tpl "github.com/oksasatya/account-service/pkg/mailer/templates"
	"github.com/oksasatya/account-service/pkg/validation"
)

const dateLayout = "2006-01-02"

// Notifier delivers a single email. It does not retry.
type Notifier interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Uploader stores a profile picture and returns its public URL.
// Implementations reject non-image or oversized payloads with helpers.ErrInvalidUpload.
type Uploader interface {
	UploadProfilePicture(ctx context.Context, userID, filename, contentType string, size int64, r io.Reader) (string, error)
}

// EventPublisher pushes JSON messages to a queue.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Settings holds the plain values the lifecycle needs from configuration.
type Settings struct {
	VerifyEmailURL string
	Branding       tpl.Branding
	CacheTTL       time.Duration
	ESIndex        string
	// MaxUploadBytes caps profile pictures; zero disables the check.
	MaxUploadBytes int64
}

type Service struct {
	Repo     repo.UserRepository
	JWT      *helpers.JWTManager
	Mailer   Notifier
	Uploader Uploader
	Redis    *redis.Client
	Events   EventPublisher
	ES       *elasticsearch.Client
	Logger   *logrus.Logger
	Settings Settings

	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Service)

func WithUploader(u Uploader) Option { return func(s *Service) { s.Uploader = u } }

// WithCache enables the public profile cache. A nil client disables it.
func WithCache(rdb *redis.Client) Option { return func(s *Service) { s.Redis = rdb } }

func WithEvents(p EventPublisher) Option { return func(s *Service) { s.Events = p } }

func WithSearch(es *elasticsearch.Client) Option { return func(s *Service) { s.ES = es } }

func NewService(r repo.UserRepository, jwt *helpers.JWTManager, mailer Notifier, logger *logrus.Logger, settings Settings, opts ...Option) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	s := &Service{
		Repo:     r,
		JWT:      jwt,
		Mailer:   mailer,
		Logger:   logger,
		Settings: settings,
		validate: validation.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return &ValidationError{Fields: validation.ToDetails(err)}
	}
	return nil
}
