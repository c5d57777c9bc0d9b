package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	historydomain "github.com/quoteforge/quoteforge/internal/confighistory/domain"
	"github.com/quoteforge/quoteforge/pkg/db/pagination"
)

func (s *Server) ListConfigurationHistory(c *gin.Context) {
	var query struct {
		pagination.Pagination
		EntityType string `form:"entity_type"`
		EntityID   string `form:"entity_id"`
		ChangeType string `form:"change_type"`
		StartAt    string `form:"start_at"`
		EndAt      string `form:"end_at"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startAt, err := parseOptionalTime(query.StartAt)
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid timestamp"))
		return
	}
	endAt, err := parseOptionalTime(query.EndAt)
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid timestamp"))
		return
	}

	resp, err := s.historySvc.List(c.Request.Context(), historydomain.ListRequest{
		Pagination: query.Pagination,
		EntityType: strings.TrimSpace(query.EntityType),
		EntityID:   strings.TrimSpace(query.EntityID),
		ChangeType: strings.TrimSpace(query.ChangeType),
		StartAt:    startAt,
		EndAt:      endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseOptionalTime(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
