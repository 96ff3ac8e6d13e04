package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	quotedomain "github.com/orbitcrm/orbitcrm/internal/quote/domain"
	"github.com/orbitcrm/orbitcrm/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type createQuoteRequest struct {
	OpportunityID   string                  `json:"opportunity_id" binding:"required"`
	Currency        string                  `json:"currency"`
	Discount        decimal.Decimal         `json:"discount"`
	CompanyBranchID string                  `json:"company_branch_id"`
	BillingState    string                  `json:"billing_state"`
	BillingGSTIN    string                  `json:"billing_gstin"`
	IsGSTApplicable bool                    `json:"is_gst_applicable"`
	ValidUntil      *time.Time              `json:"valid_until,omitempty"`
	Notes           string                  `json:"notes"`
	Items           []quotedomain.ItemInput `json:"items" binding:"required"`
}

func (s *Server) CreateQuote(c *gin.Context) {
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.quoteSvc.Create(c.Request.Context(), quotedomain.CreateQuoteRequest{
		OpportunityID:   req.OpportunityID,
		Currency:        req.Currency,
		Discount:        req.Discount,
		CompanyBranchID: req.CompanyBranchID,
		BillingState:    req.BillingState,
		BillingGSTIN:    req.BillingGSTIN,
		IsGSTApplicable: req.IsGSTApplicable,
		ValidUntil:      req.ValidUntil,
		Notes:           req.Notes,
		Items:           req.Items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (s *Server) GetQuote(c *gin.Context) {
	view, err := s.quoteSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) ListQuotesByOpportunity(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	list, err := s.quoteSvc.ListByOpportunity(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type updateQuoteRequest struct {
	Discount        *decimal.Decimal        `json:"discount,omitempty"`
	Currency        string                  `json:"currency"`
	CompanyBranchID string                  `json:"company_branch_id"`
	BillingState    *string                 `json:"billing_state,omitempty"`
	IsGSTApplicable *bool                   `json:"is_gst_applicable,omitempty"`
	Items           []quotedomain.ItemInput `json:"items,omitempty"`
}

func (s *Server) UpdateQuote(c *gin.Context) {
	var req updateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.quoteSvc.Update(c.Request.Context(), quotedomain.UpdateQuoteRequest{
		ID:              c.Param("id"),
		Discount:        req.Discount,
		Currency:        req.Currency,
		CompanyBranchID: req.CompanyBranchID,
		BillingState:    req.BillingState,
		IsGSTApplicable: req.IsGSTApplicable,
		Items:           req.Items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (s *Server) NewQuoteVersion(c *gin.Context) {
	view, err := s.quoteSvc.NewVersion(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) MarkQuoteSent(c *gin.Context) {
	view, err := s.quoteSvc.MarkSent(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type documentRequestBody struct {
	Note string `json:"note"`
}

type documentCompleteBody struct {
	Approve *bool `json:"approve" binding:"required"`
}

func (s *Server) RequestProforma(c *gin.Context) {
	var req documentRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	view, err := s.quoteSvc.RequestProforma(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) CompleteProforma(c *gin.Context) {
	var req documentCompleteBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	view, err := s.quoteSvc.CompleteProforma(c.Request.Context(), c.Param("id"), *req.Approve)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) RequestInvoice(c *gin.Context) {
	var req documentRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	view, err := s.quoteSvc.RequestInvoice(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) CompleteInvoice(c *gin.Context) {
	var req documentCompleteBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	view, err := s.quoteSvc.CompleteInvoice(c.Request.Context(), c.Param("id"), *req.Approve)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
