package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/internal/application"
	"github.com/oksasatya/account-service/pkg/response"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{application.ErrInvalidUsername, http.StatusBadRequest},
	{application.ErrInvalidUpload, http.StatusBadRequest},
	{application.ErrDuplicateEmail, http.StatusBadRequest},
	{application.ErrUsernameTaken, http.StatusBadRequest},
	{application.ErrVerificationExpired, http.StatusBadRequest},
	{application.ErrVerificationInvalid, http.StatusBadRequest},
	{application.ErrAlreadyVerified, http.StatusBadRequest},
	{application.ErrInvalidCredentials, http.StatusUnauthorized},
	{application.ErrEmailNotVerified, http.StatusUnauthorized},
	{application.ErrUserNotFound, http.StatusNotFound},
	{application.ErrNotificationFailure, http.StatusBadRequest},
	{application.ErrUploadFailed, http.StatusBadRequest},
}

// writeError maps lifecycle errors to a status and message. Anything
// unrecognised is logged and reported as a generic 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *application.ValidationError
	if errors.As(err, &verr) {
		response.Error[any](c, http.StatusBadRequest, "validation failed", verr.Fields)
		return
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			response.Error[any](c, e.status, e.err.Error(), nil)
			return
		}
	}
	logger.WithError(err).WithFields(logrus.Fields{
		"path":       c.FullPath(),
		"request_id": c.GetString("request_id"),
	}).Error("request failed")
	response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
}
