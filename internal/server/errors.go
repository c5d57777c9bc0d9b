package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	historydomain "github.com/quoteforge/quoteforge/internal/confighistory/domain"
	industrytemplatedomain "github.com/quoteforge/quoteforge/internal/industrytemplate/domain"
	pricingconfigdomain "github.com/quoteforge/quoteforge/internal/pricingconfig/domain"
	requestoverridedomain "github.com/quoteforge/quoteforge/internal/requestoverride/domain"
	resolutiondomain "github.com/quoteforge/quoteforge/internal/resolution/domain"
	userdefaultdomain "github.com/quoteforge/quoteforge/internal/userdefault/domain"
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

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
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
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, pricingconfigdomain.ErrInvalidRequestID),
		errors.Is(err, pricingconfigdomain.ErrInvalidCoordinationRate),
		errors.Is(err, pricingconfigdomain.ErrInvalidTaxRate),
		errors.Is(err, pricingconfigdomain.ErrInvalidHeadcount),
		errors.Is(err, pricingconfigdomain.ErrInvalidAmountBounds),
		errors.Is(err, pricingconfigdomain.ErrInvalidCalculationBase):
		return true
	case errors.Is(err, userdefaultdomain.ErrInvalidUser),
		errors.Is(err, userdefaultdomain.ErrInvalidCoordinationRate),
		errors.Is(err, userdefaultdomain.ErrInvalidTaxRate),
		errors.Is(err, userdefaultdomain.ErrInvalidHeadcount),
		errors.Is(err, userdefaultdomain.ErrInvalidAmountBounds),
		errors.Is(err, userdefaultdomain.ErrInvalidCalculationBase):
		return true
	case errors.Is(err, requestoverridedomain.ErrInvalidRequestID),
		errors.Is(err, requestoverridedomain.ErrInvalidCoordinationRate),
		errors.Is(err, requestoverridedomain.ErrInvalidTaxRate),
		errors.Is(err, requestoverridedomain.ErrInvalidHeadcount),
		errors.Is(err, requestoverridedomain.ErrInvalidAmountBounds),
		errors.Is(err, requestoverridedomain.ErrInvalidCalculationBase):
		return true
	case errors.Is(err, resolutiondomain.ErrInvalidRequestID):
		return true
	case errors.Is(err, historydomain.ErrInvalidEntityType),
		errors.Is(err, historydomain.ErrInvalidEntityID),
		errors.Is(err, historydomain.ErrInvalidChangeType),
		errors.Is(err, historydomain.ErrInvalidPageToken),
		errors.Is(err, historydomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, pricingconfigdomain.ErrUpdateConflict),
		errors.Is(err, pricingconfigdomain.ErrConfigurationLocked):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, pricingconfigdomain.ErrConfigurationNotFound),
		errors.Is(err, requestoverridedomain.ErrNotFound),
		errors.Is(err, industrytemplatedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
