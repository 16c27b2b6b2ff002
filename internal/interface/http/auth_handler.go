package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/internal/application"
	"github.com/oksasatya/account-service/pkg/helpers"
	"github.com/oksasatya/account-service/pkg/response"
	"github.com/oksasatya/account-service/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type resendRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req application.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, res, res.Message, nil)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	msg, err := h.Svc.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg}, msg, nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req application.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetSession(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusOK, res, "login successful", nil)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	msg, err := h.Svc.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msg}, msg, nil)
}
