package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIPKey is the gin context key holding the resolved client address.
const RealIPKey = "real_ip"

// RealIP resolves the client address from CF-Connecting-IP, then the
// left-most X-Forwarded-For entry, then gin's ClientIP.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := parseIP(c.GetHeader("CF-Connecting-IP"))
		if ip == "" {
			first, _, _ := strings.Cut(c.GetHeader("X-Forwarded-For"), ",")
			ip = parseIP(first)
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set(RealIPKey, ip)
		c.Next()
	}
}

func parseIP(s string) string {
	if ip := net.ParseIP(strings.TrimSpace(s)); ip != nil {
		return ip.String()
	}
	return ""
}
