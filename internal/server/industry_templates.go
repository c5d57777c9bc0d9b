package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListIndustryTemplates(c *gin.Context) {
	templates, err := s.templateSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": templates})
}
