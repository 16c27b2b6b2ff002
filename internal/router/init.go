package router

import (
	"github.com/oksasatya/account-service/internal/container"
	handlers "github.com/oksasatya/account-service/internal/interface/http"
	"github.com/oksasatya/account-service/internal/router/modules"
)

// Version is reported by GET /api.
var Version = "dev"

type AccountModuleDeps struct {
	Auth    *handlers.AuthHandler
	Profile *handlers.ProfileHandler
	Health  *handlers.HealthHandler
}

func buildAccountDeps() AccountModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	service := container.Service()

	return AccountModuleDeps{
		Auth:    handlers.NewAuthHandler(service, logger, cfg.CookieDomain, cfg.CookieSecure),
		Profile: handlers.NewProfileHandler(service, logger, cfg.UploadMaxBytes),
		Health:  handlers.NewHealthHandler(cfg.AppName, Version),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildAccountDeps()
	r.Add(modules.NewHealthModule(deps.Health))
	r.Add(modules.NewAuthModule(deps.Auth))
	r.Add(modules.NewProfileModule(deps.Profile, container.GetJWT()))
	r.NoRoute(deps.Health.NotFound)
}
