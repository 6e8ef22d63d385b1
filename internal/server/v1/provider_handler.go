package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/prism-fanout/internal/gateway"
	"github.com/nulzo/prism-fanout/pkg/api"
)

type ProviderHandler struct {
	service gateway.Service
}

func NewProviderHandler(service gateway.Service) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// List returns the registered providers and whether a fallback key exists
// for each. Secret values are never included.
//
// GET /v1/providers
func (h *ProviderHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, api.ProviderList{
		Object: "list",
		Data:   h.service.Providers(),
	})
}
