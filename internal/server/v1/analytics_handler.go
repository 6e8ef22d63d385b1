package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/prism-fanout/internal/analytics"
	"github.com/nulzo/prism-fanout/internal/server/validator"
	"github.com/nulzo/prism-fanout/pkg/api"
)

type AnalyticsHandler struct {
	service   analytics.Service
	validator *validator.Validator
}

func NewAnalyticsHandler(service analytics.Service, v *validator.Validator) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:   service,
		validator: v,
	}
}

// ListRuns returns the most recent run records.
//
// GET /v1/runs?limit=50
func (h *AnalyticsHandler) ListRuns(c *gin.Context) {
	var q api.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}

	runs, err := h.service.RecentRuns(c.Request.Context(), q.Limit)
	if err != nil {
		_ = c.Error(api.InternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   runs,
	})
}

// GetRun returns every provider record of one run.
//
// GET /v1/runs/:id
func (h *AnalyticsHandler) GetRun(c *gin.Context) {
	records, err := h.service.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(api.InternalError(err))
		return
	}
	if len(records) == 0 {
		_ = c.Error(api.NewError(http.StatusNotFound, api.ReasonNotFound))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "run",
		"id":     c.Param("id"),
		"data":   records,
	})
}

// GetStats aggregates outcomes per provider.
//
// GET /v1/stats?days=7
func (h *AnalyticsHandler) GetStats(c *gin.Context) {
	var q api.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.Days == 0 {
		q.Days = analytics.DefaultStatsDays
	}

	stats, err := h.service.ProviderStats(c.Request.Context(), q.Days)
	if err != nil {
		_ = c.Error(api.InternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"days":   q.Days,
		"data":   stats,
	})
}

func (h *AnalyticsHandler) bindQuery(c *gin.Context, q *api.ListQuery) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		detail := ""
		for field, msg := range h.validator.ParseError(err) {
			detail += field + ": " + msg + " "
		}
		_ = c.Error(api.InvalidRequest(api.ReasonInvalidQuery, api.WithDetail(detail)))
		return false
	}
	return true
}
