package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stagedoor/backend/internal/metrics"
	"github.com/stagedoor/backend/internal/normalize"
	"github.com/stagedoor/backend/internal/services"
	"github.com/stagedoor/backend/internal/utils"
	"github.com/tidwall/gjson"
)

const actionAddRequest = "requests.add"

type DJHandler struct {
	djService *services.DJService
}

func NewDJHandler(djService *services.DJService) *DJHandler {
	return &DJHandler{djService: djService}
}

// readBody parses the JSON body with gjson so timestamps may arrive as
// RFC3339 strings or epoch milliseconds.
func readBody(c *gin.Context) (gjson.Result, bool) {
	raw, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON body"})
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(raw), true
}

func field(body gjson.Result, name string) string {
	return normalize.String(normalize.SongFields.Get(body, name), "")
}

func songError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidSong):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrSongBlacklisted), errors.Is(err, services.ErrSongOnCooldown):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrNotBlacklisted):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	default:
		utils.Log.WithError(err).Error("DJ queue operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}

// GetRequests returns requests, blacklist, cooldowns and stats in one payload
func (h *DJHandler) GetRequests(c *gin.Context) {
	snap, err := h.djService.Snapshot(c.Request.Context())
	if err != nil {
		songError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": snap})
}

// PostRequest handles {action, data} commands from the request page
func (h *DJHandler) PostRequest(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	if action := body.Get("action").String(); action != actionAddRequest {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown action"})
		return
	}
	data := body.Get("data")

	req, err := h.djService.AddRequest(c.Request.Context(), services.AddRequestInput{
		SongID:       field(data, "songId"),
		Title:        field(data, "title"),
		Artist:       field(data, "artist"),
		Venue:        field(data, "venue"),
		Timestamp:    normalize.Time(normalize.SongFields.Get(data, "requestedAt")),
		RequestCount: normalize.Int(normalize.SongFields.Get(data, "requestCount")),
	})
	if err != nil {
		songError(c, err)
		return
	}

	metrics.SongEvents.WithLabelValues("request").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": req})
}

// PlaySong moves a song from the queue to cooldown
func (h *DJHandler) PlaySong(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	cooldown, err := h.djService.PlaySong(c.Request.Context(), services.PlaySongInput{
		SongID:        field(body, "songId"),
		Title:         field(body, "title"),
		Artist:        field(body, "artist"),
		CooldownUntil: normalize.Time(normalize.SongFields.Get(body, "cooldownUntil")),
	})
	if err != nil {
		songError(c, err)
		return
	}

	metrics.SongEvents.WithLabelValues("play").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cooldown})
}

// AddToBlacklist bans a song
func (h *DJHandler) AddToBlacklist(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	entry, err := h.djService.Blacklist(c.Request.Context(), services.BlacklistInput{
		SongID: field(body, "songId"),
		Title:  field(body, "title"),
		Artist: field(body, "artist"),
	})
	if err != nil {
		songError(c, err)
		return
	}

	metrics.SongEvents.WithLabelValues("blacklist").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": entry})
}

// RemoveFromBlacklist lifts a ban. The song id comes from the body or ?songId=
func (h *DJHandler) RemoveFromBlacklist(c *gin.Context) {
	songID := c.Query("songId")
	if songID == "" {
		body, ok := readBody(c)
		if !ok {
			return
		}
		songID = field(body, "songId")
	}

	if err := h.djService.Unblacklist(c.Request.Context(), songID); err != nil {
		songError(c, err)
		return
	}

	metrics.SongEvents.WithLabelValues("unblacklist").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
