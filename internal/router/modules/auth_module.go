package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/account-service/internal/interface/http"
)

// AuthModule wires signup, verification and login.
// Public: POST /auth/signup, GET /auth/verify-email, POST /auth/login,
// POST /auth/resend-verification
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", m.Handler.Signup)
	rg.GET("/auth/verify-email", m.Handler.VerifyEmail)
	rg.POST("/auth/login", m.Handler.Login)
	rg.POST("/auth/resend-verification", m.Handler.ResendVerification)
}
