package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerToken returns the credential from an "Authorization: Bearer <token>" header,
// or an empty string when the header is absent or uses another scheme.
func BearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
