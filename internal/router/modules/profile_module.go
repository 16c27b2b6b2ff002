package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/account-service/internal/interface/http"
	"github.com/oksasatya/account-service/internal/interface/middleware"
	"github.com/oksasatya/account-service/pkg/helpers"
)

// ProfileModule wires profile routes.
// Public: GET /profile/check-username, GET /profile/search, GET /profile/:username
// Protected: GET /profile/me, PUT /profile/update
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	JWT     *helpers.JWTManager
}

func NewProfileModule(h *handlers.ProfileHandler, jwt *helpers.JWTManager) *ProfileModule {
	return &ProfileModule{Handler: h, JWT: jwt}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	rg.GET("/profile/check-username", m.Handler.CheckUsername)
	rg.GET("/profile/search", m.Handler.Search)

	auth := rg.Group("/profile")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.GET("/me", m.Handler.Me)
		auth.PUT("/update", m.Handler.Update)
	}

	rg.GET("/profile/:username", m.Handler.Public)
}
