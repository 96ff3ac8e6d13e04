package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/orbitcrm/orbitcrm/internal/auth/domain"
	"github.com/orbitcrm/orbitcrm/internal/authctx"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) Me(c *gin.Context) {
	principal, ok := authctx.PrincipalFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": principal.UserID.String(),
		"name":    principal.Name,
		"email":   principal.Email,
		"role":    principal.RoleName,
	})
}
