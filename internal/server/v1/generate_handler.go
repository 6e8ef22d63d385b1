package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/prism-fanout/internal/gateway"
	"github.com/nulzo/prism-fanout/internal/server/middleware"
	"github.com/nulzo/prism-fanout/internal/server/validator"
	"github.com/nulzo/prism-fanout/pkg/api"
)

type GenerateHandler struct {
	service   gateway.Service
	validator *validator.Validator
}

func NewGenerateHandler(service gateway.Service, v *validator.Validator) *GenerateHandler {
	return &GenerateHandler{
		service:   service,
		validator: v,
	}
}

// Generate fans the prompt out to every enabled provider.
//
// POST /generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, api.MaxGenerateBody)
	}

	// an empty body is an empty object, the validator reports the prompt
	var payload api.GenerateRequest
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(api.BodyTooLarge(tooLarge.Limit))
			return
		}
		_ = c.Error(api.InvalidRequest(api.ReasonInvalidBody, api.WithDetail(err.Error())))
		return
	}

	req, err := h.validator.Validate(&payload)
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(api.InternalError(err))
		return
	}

	c.Header(middleware.RunIDHeader, result.RunID)
	c.JSON(http.StatusOK, api.GenerateResponse{Results: result.Results})
}
