package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pricingconfigdomain "github.com/quoteforge/quoteforge/internal/pricingconfig/domain"
	"github.com/shopspring/decimal"
)

type upsertPricingConfigurationRequest struct {
	Name string `json:"name"`

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

	UpdatedBy string `json:"updated_by"`
}

func (r upsertPricingConfigurationRequest) params() pricingconfigdomain.UpsertParams {
	return pricingconfigdomain.UpsertParams{
		Name:                      strings.TrimSpace(r.Name),
		CoordinationEnabled:       r.CoordinationEnabled,
		CoordinationRate:          r.CoordinationRate,
		CoordinationApplyToTotal:  r.CoordinationApplyToTotal,
		CoordinationMinimumAmount: r.CoordinationMinimumAmount,
		CoordinationMaximumAmount: r.CoordinationMaximumAmount,
		CostPerPersonEnabled:      r.CostPerPersonEnabled,
		Headcount:                 r.Headcount,
		CalculationBase:           r.CalculationBase,
		RoundToCents:              r.RoundToCents,
		TaxEnabled:                r.TaxEnabled,
		TaxRate:                   r.TaxRate,
		TaxApplyToSubtotalWithCoordination: r.TaxApplyToSubtotalWithCoordination,
	}
}

func (s *Server) GetPricingConfiguration(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("request_id"))

	cfg, err := s.configSvc.Get(c.Request.Context(), requestID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}

func (s *Server) UpsertPricingConfiguration(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("request_id"))

	var req upsertPricingConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id, err := s.configSvc.Upsert(c.Request.Context(), requestID, req.params(), strings.TrimSpace(req.UpdatedBy))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"configuration_id": id}})
}

func (s *Server) ReplacePricingConfiguration(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("request_id"))

	var req upsertPricingConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id, err := s.configSvc.Replace(c.Request.Context(), requestID, req.params(), strings.TrimSpace(req.UpdatedBy))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"configuration_id": id}})
}

func (s *Server) ArchivePricingConfiguration(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("request_id"))

	var req struct {
		UpdatedBy string `json:"updated_by"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := s.configSvc.Archive(c.Request.Context(), requestID, strings.TrimSpace(req.UpdatedBy)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"archived": true}})
}
