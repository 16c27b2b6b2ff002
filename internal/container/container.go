package container

import (
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/config"
	"github.com/oksasatya/account-service/internal/application"
	repo "github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
	tpl "github.com/oksasatya/account-service/pkg/mailer/templates"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	userRepo    repo.UserRepository
	redisClient *redis.Client
	jwtManager  *helpers.JWTManager

	notifier  application.Notifier
	uploader  application.Uploader
	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client

	svcOnce sync.Once
	svc     *application.Service
)

func SetConfig(c *config.Config)              { cfg = c }
func GetConfig() *config.Config               { return cfg }
func SetLogger(l *logrus.Logger)              { logger = l }
func GetLogger() *logrus.Logger               { return logger }
func SetUserRepository(r repo.UserRepository) { userRepo = r }
func SetRedis(r *redis.Client)                { redisClient = r }
func SetJWT(m *helpers.JWTManager)            { jwtManager = m }
func GetJWT() *helpers.JWTManager             { return jwtManager }
func SetNotifier(n application.Notifier)      { notifier = n }
func SetUploader(u application.Uploader)      { uploader = u }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func SetES(c *elasticsearch.Client)           { esClient = c }

// Settings derives the lifecycle settings from the loaded config.
func Settings(c *config.Config) application.Settings {
	return application.Settings{
		VerifyEmailURL: c.VerifyEmailURL,
		Branding: tpl.Branding{
			AppName:     c.AppDisplayName,
			CompanyName: c.CompanyName,
			SupportURL:  c.SupportURL,
		},
		CacheTTL:       c.ProfileCacheTTL,
		ESIndex:        c.ESProfilesIndex,
		MaxUploadBytes: c.UploadMaxBytes,
	}
}

// Service builds the account lifecycle service once from the registered
// singletons. Optional components left unset are simply not wired.
func Service() *application.Service {
	svcOnce.Do(func() {
		var opts []application.Option
		if uploader != nil {
			opts = append(opts, application.WithUploader(uploader))
		}
		if redisClient != nil {
			opts = append(opts, application.WithCache(redisClient))
		}
		if rabbitPub != nil {
			opts = append(opts, application.WithEvents(rabbitPub))
		}
		if esClient != nil {
			opts = append(opts, application.WithSearch(esClient))
		}
		svc = application.NewService(userRepo, jwtManager, notifier, logger, Settings(cfg), opts...)
	})
	return svc
}
