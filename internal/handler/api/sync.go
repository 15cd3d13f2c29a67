package api

import (
	"errors"
	"net/http"
	"strconv"

	"coupon-sync/internal/domain/syncrun"
	reqdto "coupon-sync/internal/handler/dto/request"
	resdto "coupon-sync/internal/handler/dto/response"
	"coupon-sync/internal/usecase"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncUseCase   *usecase.SyncUseCase
	controller    *usecase.RunStateController
	statusUseCase *usecase.StatusUseCase
	batchUseCase  *usecase.BrandBatchUseCase
}

func NewSyncHandler(
	syncUseCase *usecase.SyncUseCase,
	controller *usecase.RunStateController,
	statusUseCase *usecase.StatusUseCase,
	batchUseCase *usecase.BrandBatchUseCase,
) *SyncHandler {
	return &SyncHandler{
		syncUseCase:   syncUseCase,
		controller:    controller,
		statusUseCase: statusUseCase,
		batchUseCase:  batchUseCase,
	}
}

// @Summary Start a sync run
// @Description Trigger a manual sync run; the run executes in the background
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Success 202 {object} resdto.RunStartedResponse
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /sync/runs [post]
func (h *SyncHandler) StartRun(c *gin.Context) {
	// A webhook cron can request scheduled semantics, which adds the
	// once-per-day guard instead of the manual spacing guard.
	actor := syncrun.ActorManual
	if c.Query("actor") == string(syncrun.ActorScheduled) {
		actor = syncrun.ActorScheduled
	}

	handle, err := h.syncUseCase.Start(c.Request.Context(), actor)
	if err != nil {
		var rateLimited *usecase.StartRateLimitedError
		switch {
		case errors.Is(err, usecase.ErrAlreadyRunning):
			c.JSON(http.StatusConflict, gin.H{
				"error": "A sync run is already in progress",
			})
		case errors.Is(err, usecase.ErrAlreadyCompletedToday):
			c.JSON(http.StatusOK, resdto.RunSkippedResponse{
				Skipped: true,
				Reason:  "Already completed today",
			})
		case errors.As(err, &rateLimited):
			c.Header("Retry-After", strconv.Itoa(int(rateLimited.Remaining.Seconds())+1))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":        "Manual runs are rate limited",
				"retryAfterMs": rateLimited.Remaining.Milliseconds(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusAccepted, resdto.RunStartedResponse{
		RunID: handle.RunID.String(),
		Actor: string(handle.Actor),
	})
}

// @Summary Stop the active sync run
// @Description Request cooperative stop; the run halts at its next checkpoint
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Success 202 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /sync/stop [post]
func (h *SyncHandler) StopRun(c *gin.Context) {
	if err := h.controller.RequestStop(c.Request.Context()); err != nil {
		if errors.Is(err, usecase.ErrNotRunning) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "No sync run in progress",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Stop requested",
	})
}

// @Summary Sync status
// @Description Current run state, last run summary, and next scheduled run
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.StatusResponse
// @Failure 401 {object} map[string]string
// @Router /sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	view, err := h.statusUseCase.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	resp, err := resdto.FromStatusView(view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Enrich brands in a batch
// @Description Process one offset-paginated batch of brands missing content
// @Tags sync
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.BrandBatchRequest true "Batch request"
// @Success 200 {object} resdto.BrandBatchResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /sync/brand-batch [post]
func (h *SyncHandler) BrandBatch(c *gin.Context) {
	var req reqdto.BrandBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.batchUseCase.ProcessBatch(c.Request.Context(), req.Offset)
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

	resp, err := resdto.FromBrandBatchResult(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}
