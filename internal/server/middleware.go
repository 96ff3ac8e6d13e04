package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/orbitcrm/orbitcrm/internal/auth/domain"
	"github.com/orbitcrm/orbitcrm/internal/auth/password"
	"github.com/orbitcrm/orbitcrm/internal/authctx"
	platformdomain "github.com/orbitcrm/orbitcrm/internal/platform/domain"
)

// AuthRequired authenticates the bearer token against the request's tenant
// store and threads the principal into the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authsvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(authctx.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// RequireRole gates a route to principals holding one of the named roles.
func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := authctx.PrincipalFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if principal.RoleName == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

// PlatformAuthRequired authenticates an operator against the platform admin
// table via basic auth. Platform routes never touch tenant stores.
func (s *Server) PlatformAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		email, plaintext, ok := c.Request.BasicAuth()
		if !ok || email == "" {
			c.Header("WWW-Authenticate", `Basic realm="platform"`)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		var admin platformdomain.PlatformAdmin
		err := s.platformDB.WithContext(c.Request.Context()).
			Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
			First(&admin).Error
		if err != nil || !password.Verify(plaintext, admin.PasswordHash) {
			AbortWithError(c, authdomain.ErrInvalidCredentials)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
