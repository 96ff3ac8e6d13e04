package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/orbitcrm/orbitcrm/internal/approval/domain"
	authdomain "github.com/orbitcrm/orbitcrm/internal/auth/domain"
	paymentdomain "github.com/orbitcrm/orbitcrm/internal/payment/domain"
	platformdomain "github.com/orbitcrm/orbitcrm/internal/platform/domain"
	quotedomain "github.com/orbitcrm/orbitcrm/internal/quote/domain"
	tenantdomain "github.com/orbitcrm/orbitcrm/internal/tenant/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Code: err.Error(), Message: "invalid value"},
			},
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, quotedomain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authdomain.ErrInactiveUser),
		errors.Is(err, approvaldomain.ErrNotAuthorized):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, approvaldomain.ErrRuleMisconfigured),
		errors.Is(err, quotedomain.ErrStatusMissing):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, quotedomain.ErrInvalidID),
		errors.Is(err, quotedomain.ErrInvalidItem),
		errors.Is(err, approvaldomain.ErrInvalidRule),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, platformdomain.ErrInvalidTenant),
		errors.Is(err, tenantdomain.ErrInvalidDSN):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, quotedomain.ErrNotFound),
		errors.Is(err, quotedomain.ErrOpportunityNotFound),
		errors.Is(err, approvaldomain.ErrRuleNotFound),
		errors.Is(err, approvaldomain.ErrApprovalNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, quotedomain.ErrQuoteLocked),
		errors.Is(err, quotedomain.ErrInvalidStatus),
		errors.Is(err, quotedomain.ErrAlreadyRequested),
		errors.Is(err, quotedomain.ErrRequestNotPending),
		errors.Is(err, approvaldomain.ErrConflict),
		errors.Is(err, paymentdomain.ErrNotPending),
		errors.Is(err, tenantdomain.ErrSlugTaken):
		return true
	default:
		return false
	}
}
