package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	platformdomain "github.com/orbitcrm/orbitcrm/internal/platform/domain"
)

func (s *Server) ListTenants(c *gin.Context) {
	tenants, err := s.platformSvc.ListTenants(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (s *Server) CreateTenant(c *gin.Context) {
	var req platformdomain.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant, err := s.platformSvc.CreateTenant(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

func (s *Server) ActivateTenant(c *gin.Context) {
	tenant, err := s.platformSvc.SetTenantActive(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (s *Server) DeactivateTenant(c *gin.Context) {
	tenant, err := s.platformSvc.SetTenantActive(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}
