package api

import (
	"errors"
	"net/http"

	"coupon-sync/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	providers *usecase.ProviderUseCase
}

func NewProviderHandler(providers *usecase.ProviderUseCase) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

// @Summary Test provider connectivity
// @Description Probe one provider with the configured credentials
// @Tags providers
// @Produce json
// @Security BearerAuth
// @Param name path string true "Provider name"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /providers/{name}/test [get]
func (h *ProviderHandler) Test(c *gin.Context) {
	name := c.Param("name")

	ok, err := h.providers.Test(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownProvider) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Unknown provider",
				"available": h.providers.Names(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider": name,
		"ok":       ok,
	})
}
