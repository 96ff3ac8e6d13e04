package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/orbitcrm/orbitcrm/internal/authctx"
	clientdomain "github.com/orbitcrm/orbitcrm/internal/client/domain"
	companydomain "github.com/orbitcrm/orbitcrm/internal/company/domain"
	opportunitydomain "github.com/orbitcrm/orbitcrm/internal/opportunity/domain"
	"github.com/orbitcrm/orbitcrm/pkg/tenantctx"
	"github.com/shopspring/decimal"
)

func (s *Server) pathID(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid identifier"))
		return 0, false
	}
	return id, true
}

type createCompanyRequest struct {
	Name  string  `json:"name" binding:"required"`
	GSTIN *string `json:"gstin,omitempty"`
}

func (s *Server) CreateCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	company := companydomain.Company{
		ID:       s.genID.Generate(),
		Name:     req.Name,
		GSTIN:    req.GSTIN,
		IsActive: true,
	}
	if err := s.companyRepo.InsertCompany(ctx, tenantctx.DB(ctx, s.db), &company); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, company)
}

type createBranchRequest struct {
	Name  string  `json:"name" binding:"required"`
	State string  `json:"state"`
	GSTIN *string `json:"gstin,omitempty"`
}

func (s *Server) CreateCompanyBranch(c *gin.Context) {
	companyID, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	branch := companydomain.CompanyBranch{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		Name:      req.Name,
		State:     req.State,
		GSTIN:     req.GSTIN,
		IsActive:  true,
	}
	if err := s.companyRepo.InsertBranch(ctx, tenantctx.DB(ctx, s.db), &branch); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, branch)
}

type createClientRequest struct {
	Name     string  `json:"name" binding:"required"`
	Industry *string `json:"industry,omitempty"`
}

func (s *Server) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	client := clientdomain.Client{
		ID:       s.genID.Generate(),
		Name:     req.Name,
		Industry: req.Industry,
		IsActive: true,
	}
	if err := s.clientRepo.InsertClient(ctx, tenantctx.DB(ctx, s.db), &client); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

func (s *Server) CreateClientBranch(c *gin.Context) {
	clientID, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	branch := clientdomain.ClientBranch{
		ID:       s.genID.Generate(),
		ClientID: clientID,
		Name:     req.Name,
		State:    req.State,
		GSTIN:    req.GSTIN,
		IsActive: true,
	}
	if err := s.clientRepo.InsertBranch(ctx, tenantctx.DB(ctx, s.db), &branch); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, branch)
}

type createOpportunityRequest struct {
	Name           string          `json:"name" binding:"required"`
	ClientID       *string         `json:"client_id,omitempty"`
	ClientBranchID *string         `json:"client_branch_id,omitempty"`
	Stage          string          `json:"stage"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
}

func (s *Server) CreateOpportunity(c *gin.Context) {
	var req createOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	principal, ok := authctx.PrincipalFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	opp := opportunitydomain.Opportunity{
		ID:             s.genID.Generate(),
		Name:           req.Name,
		OwnerID:        principal.UserID,
		Stage:          "Open",
		EstimatedValue: req.EstimatedValue,
	}
	if req.Stage != "" {
		opp.Stage = req.Stage
	}
	if req.ClientID != nil {
		id, err := snowflake.ParseString(*req.ClientID)
		if err != nil {
			AbortWithError(c, newValidationError("client_id", "invalid_id", "invalid identifier"))
			return
		}
		opp.ClientID = &id
	}
	if req.ClientBranchID != nil {
		id, err := snowflake.ParseString(*req.ClientBranchID)
		if err != nil {
			AbortWithError(c, newValidationError("client_branch_id", "invalid_id", "invalid identifier"))
			return
		}
		opp.ClientBranchID = &id
	}

	ctx := c.Request.Context()
	if err := s.oppRepo.Insert(ctx, tenantctx.DB(ctx, s.db), &opp); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, opp)
}
