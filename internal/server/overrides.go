package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	requestoverridedomain "github.com/quoteforge/quoteforge/internal/requestoverride/domain"
)

type setOverrideRequest struct {
	requestoverridedomain.SetParams
	UpdatedBy string `json:"updated_by"`
}

func (s *Server) GetConfigurationOverride(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("request_id"))

	override, err := s.overrideSvc.Get(c.Request.Context(), requestID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": override})
}

func (s *Server) SetConfigurationOverride(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("request_id"))

	var req setOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	override, err := s.overrideSvc.Set(c.Request.Context(), requestID, req.SetParams, strings.TrimSpace(req.UpdatedBy))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": override})
}

func (s *Server) ClearConfigurationOverride(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("request_id"))

	if err := s.overrideSvc.Clear(c.Request.Context(), requestID, ""); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"cleared": true}})
}
