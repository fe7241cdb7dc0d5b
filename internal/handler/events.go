package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opensettle/marketgate/internal/repository"
	"github.com/opensettle/marketgate/internal/stream"
)

const defaultEventLimit = 50

// EventsHandler serves the settlement feed. The redis and store backends are
// optional; endpoints backed by an absent backend return 404.
type EventsHandler struct {
	redis *repository.RedisEventSink
	store *repository.SettlementStore
	hub   *stream.Hub
}

func NewEventsHandler(redis *repository.RedisEventSink, store *repository.SettlementStore, hub *stream.Hub) *EventsHandler {
	return &EventsHandler{redis: redis, store: store, hub: hub}
}

func (h *EventsHandler) Recent(c *gin.Context) {
	if h.redis == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event cache not configured"})
		return
	}

	events, err := h.redis.Recent(c.Request.Context(), queryLimit(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *EventsHandler) History(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event store not configured"})
		return
	}

	records, err := h.store.History(c.Request.Context(), c.Query("collection"), queryLimit(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": records})
}

func (h *EventsHandler) Stream(c *gin.Context) {
	h.hub.ServeWS(c)
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", ""))
	if err != nil || limit <= 0 {
		return defaultEventLimit
	}
	return limit
}
