package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quoteforge/quoteforge/internal/calculator"
)

type computeBreakdownRequest struct {
	// RequestID resolves the effective configuration when no inline
	// configuration is supplied.
	RequestID string                   `json:"request_id"`
	Config    *calculator.PricingInput `json:"config"`
	Items     []calculator.LineItem    `json:"items"`
}

// ComputeBreakdown runs the pricing pipeline without persisting anything.
// Callers either inline a pricing configuration or name a request whose
// effective configuration should apply.
func (s *Server) ComputeBreakdown(c *gin.Context) {
	var req computeBreakdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	input := calculator.PricingInput{}
	switch {
	case req.Config != nil:
		input = *req.Config
	case strings.TrimSpace(req.RequestID) != "":
		effective, err := s.resolutionSvc.Resolve(c.Request.Context(), strings.TrimSpace(req.RequestID))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		input = effective.Pricing
	default:
		AbortWithError(c, newValidationError("config", "missing_config", "either config or request_id is required"))
		return
	}

	if input.CostPerPerson.CalculationBase != "" && !calculator.ValidCalculationBase(input.CostPerPerson.CalculationBase) {
		AbortWithError(c, newValidationError("calculation_base", "invalid_calculation_base", "invalid value"))
		return
	}

	breakdown := calculator.Calculate(req.Items, input)
	c.JSON(http.StatusOK, gin.H{"data": breakdown})
}
