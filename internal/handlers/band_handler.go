package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stagedoor/backend/internal/metrics"
	"github.com/stagedoor/backend/internal/models"
	"github.com/stagedoor/backend/internal/normalize"
	"github.com/stagedoor/backend/internal/scoring"
	"github.com/stagedoor/backend/internal/services"
	"github.com/stagedoor/backend/internal/utils"
)

type BandHandler struct {
	bandService   *services.BandService
	statusService *services.BandStatusService
}

func NewBandHandler(bandService *services.BandService, statusService *services.BandStatusService) *BandHandler {
	return &BandHandler{
		bandService:   bandService,
		statusService: statusService,
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v >= 0 {
		return v
	}
	return def
}

// ListBands returns one ranked view of the band list
func (h *BandHandler) ListBands(c *gin.Context) {
	q := services.BandQuery{
		Focus: scoring.ProfileKey(c.Query("focus")),
		View:  c.DefaultQuery("view", "discovery"),
		Sort:  scoring.SortKey(c.DefaultQuery("sort", string(scoring.SortScore))),
		Filter: scoring.Filter{
			Query: c.Query("q"),
		},
		Limit: queryInt(c, "limit", 0),
	}
	if rec := c.Query("recommendation"); rec != "" {
		q.Filter.Recommendation = normalize.Recommendation(rec)
	}
	if status := c.Query("status"); status != "" {
		q.Filter.BookingStatus = normalize.BookingStatus(status)
	}

	list, err := h.bandService.List(c.Request.Context(), q)
	if err != nil {
		utils.Log.WithError(err).Error("Failed to load bands")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to load bands"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list.Bands,
		"counts":  list.Counts,
		"focus":   list.Focus,
	})
}

// GetProfiles lists the ranking profiles
func (h *BandHandler) GetProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.bandService.Profiles()})
}

// GetRecommendations returns the top discovery bands for a focus
func (h *BandHandler) GetRecommendations(c *gin.Context) {
	focus := scoring.ProfileKey(c.DefaultQuery("focus", string(scoring.HiddenGems)))
	bands, err := h.bandService.Recommend(c.Request.Context(), focus, queryInt(c, "n", 5))
	if err != nil {
		utils.Log.WithError(err).Error("Failed to load recommendations")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to load bands"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": bands})
}

// RefreshBands triggers a rescrape, at most once per gate window
func (h *BandHandler) RefreshBands(c *gin.Context) {
	err := h.bandService.Refresh(c.Request.Context())

	var tooSoon *services.RefreshTooSoonError
	switch {
	case err == nil:
		metrics.BandRefreshes.WithLabelValues("triggered").Inc()
		c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "Refresh started"})
	case errors.As(err, &tooSoon):
		metrics.BandRefreshes.WithLabelValues("throttled").Inc()
		secs := int(math.Ceil(tooSoon.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(secs))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success":     false,
			"error":       "Refresh already in progress",
			"retry_after": secs,
		})
	default:
		metrics.BandRefreshes.WithLabelValues("failed").Inc()
		utils.Log.WithError(err).Error("Band refresh failed")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to start refresh"})
	}
}

// UpdateStatus marks a band as played or removed
func (h *BandHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		BandName   string                 `json:"bandName"`
		BandAction string                 `json:"bandAction" binding:"required"`
		Payload    map[string]interface{} `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	change, err := h.statusService.Update(c.Request.Context(), services.BandStatusInput{
		BandID:     c.Param("id"),
		BandName:   req.BandName,
		BandAction: req.BandAction,
		Payload:    req.Payload,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidBandAction) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to update band status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": change})
}

// GetStatusHistory lists recorded status changes for a band
func (h *BandHandler) GetStatusHistory(c *gin.Context) {
	changes, err := h.statusService.History(c.Request.Context(), c.Param("id"), queryInt(c, "limit", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load history"})
		return
	}
	if changes == nil {
		changes = []*models.BandStatusChange{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": changes})
}
