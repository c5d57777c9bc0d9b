package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	userdefaultdomain "github.com/quoteforge/quoteforge/internal/userdefault/domain"
	"github.com/shopspring/decimal"
)

type updateUserDefaultRequest struct {
	CoordinationEnabled       *bool            `json:"coordination_enabled"`
	CoordinationRate          *decimal.Decimal `json:"coordination_rate"`
	CoordinationApplyToTotal  *bool            `json:"coordination_apply_to_total"`
	CoordinationMinimumAmount *decimal.Decimal `json:"coordination_minimum_amount"`
	CoordinationMaximumAmount *decimal.Decimal `json:"coordination_maximum_amount"`

	CostPerPersonEnabled *bool   `json:"cost_per_person_enabled"`
	Headcount            *int64  `json:"headcount"`
	CalculationBase      *string `json:"calculation_base"`
	RoundToCents         *bool   `json:"round_to_cents"`

	TaxEnabled                         *bool            `json:"tax_enabled"`
	TaxRate                            *decimal.Decimal `json:"tax_rate"`
	TaxApplyToSubtotalWithCoordination *bool            `json:"tax_apply_to_subtotal_with_coordination"`

	Currency         *string `json:"currency"`
	Language         *string `json:"language"`
	BrandingTemplate *string `json:"branding_template"`
	LogoURL          *string `json:"logo_url"`

	UpdatedBy string `json:"updated_by"`
}

func (s *Server) GetUserDefaultConfiguration(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))

	cfg, err := s.userDefaultSvc.Ensure(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}

func (s *Server) UpdateUserDefaultConfiguration(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))

	var req updateUserDefaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	cfg, err := s.userDefaultSvc.Update(c.Request.Context(), userID, userdefaultdomain.UpdateParams{
		CoordinationEnabled:       req.CoordinationEnabled,
		CoordinationRate:          req.CoordinationRate,
		CoordinationApplyToTotal:  req.CoordinationApplyToTotal,
		CoordinationMinimumAmount: req.CoordinationMinimumAmount,
		CoordinationMaximumAmount: req.CoordinationMaximumAmount,
		CostPerPersonEnabled:      req.CostPerPersonEnabled,
		Headcount:                 req.Headcount,
		CalculationBase:           req.CalculationBase,
		RoundToCents:              req.RoundToCents,
		TaxEnabled:                req.TaxEnabled,
		TaxRate:                   req.TaxRate,
		TaxApplyToSubtotalWithCoordination: req.TaxApplyToSubtotalWithCoordination,
		Currency:         req.Currency,
		Language:         req.Language,
		BrandingTemplate: req.BrandingTemplate,
		LogoURL:          req.LogoURL,
	}, strings.TrimSpace(req.UpdatedBy))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}
