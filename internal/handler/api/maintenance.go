package api

import (
	"errors"
	"io"
	"net/http"

	reqdto "coupon-sync/internal/handler/dto/request"
	resdto "coupon-sync/internal/handler/dto/response"
	"coupon-sync/internal/usecase"

	"github.com/gin-gonic/gin"
)

type MaintenanceHandler struct {
	expiration *usecase.ExpirationUseCase
	dedup      *usecase.DedupUseCase
}

func NewMaintenanceHandler(expiration *usecase.ExpirationUseCase, dedup *usecase.DedupUseCase) *MaintenanceHandler {
	return &MaintenanceHandler{expiration: expiration, dedup: dedup}
}

// @Summary Purge expired coupons
// @Description Delete coupons whose expiry has passed; non-expiring coupons are kept
// @Tags maintenance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.PurgeExpiredResponse
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /maintenance/purge-expired [post]
func (h *MaintenanceHandler) PurgeExpired(c *gin.Context) {
	removed, err := h.expiration.PurgeExpired(c.Request.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A sync run is already in progress",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.PurgeExpiredResponse{Removed: removed})
}

// @Summary Purge duplicate coupons
// @Description Remove coupons colliding on brand and normalized code, keeping one canonical member per group
// @Tags maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.PurgeDuplicatesRequest false "Purge options"
// @Success 200 {object} resdto.PurgeDuplicatesResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /maintenance/purge-duplicates [post]
func (h *MaintenanceHandler) PurgeDuplicates(c *gin.Context) {
	// Body is optional; absent means a live purge.
	var req reqdto.PurgeDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	report, err := h.dedup.PurgeDuplicates(c.Request.Context(), req.DryRun)
	if err != nil {
		if errors.Is(err, usecase.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A sync run is already in progress",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromDedupReport(report))
}
