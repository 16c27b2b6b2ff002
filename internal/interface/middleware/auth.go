package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/account-service/pkg/helpers"
	"github.com/oksasatya/account-service/pkg/response"
)

// bearerToken returns the Authorization bearer token, falling back to the
// session cookie.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if token, err := c.Cookie(helpers.SessionCookie); err == nil {
		return token
	}
	return ""
}

// Auth validates the session token and sets userID and userEmail in the Gin
// context on success.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.Verify(token)
		if err != nil {
			msg := "invalid access token"
			if errors.Is(err, helpers.ErrTokenExpired) {
				msg = "access token expired"
			}
			response.Error[any](c, http.StatusUnauthorized, msg, nil)
			c.Abort()
			return
		}
		if claims.Purpose != helpers.PurposeSession || claims.UserID == "" {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}
