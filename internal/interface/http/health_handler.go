package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/account-service/pkg/response"
)

type HealthHandler struct {
	AppName string
	Version string
}

func NewHealthHandler(appName, version string) *HealthHandler {
	return &HealthHandler{AppName: appName, Version: version}
}

func (h *HealthHandler) Welcome(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"name": h.AppName, "version": h.Version}, "Welcome to "+h.AppName, nil)
}

func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()}, "healthy", nil)
}

// NotFound answers unknown routes with the standard envelope.
func (h *HealthHandler) NotFound(c *gin.Context) {
	response.Error[any](c, http.StatusNotFound, "not found", nil)
}
