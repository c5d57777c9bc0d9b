package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetEffectiveConfiguration(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("request_id"))

	effective, err := s.resolutionSvc.Resolve(c.Request.Context(), requestID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": effective})
}
