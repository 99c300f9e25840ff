package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/geotrack/module/core/domain"
)

type eventService interface {
	List(ctx context.Context, q *domain.EventQuery) ([]domain.CrossingEvent, error)
	CountByType(ctx context.Context, t domain.EventType, start, end time.Time) (int64, error)
	MarkNotified(ctx context.Context, id string) error
}

type EventHandler struct {
	eventSvc eventService
}

func NewEventHandler(eventSvc eventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

func (h *EventHandler) Register(r *gin.RouterGroup) {
	r.GET("/events", h.List)
	r.GET("/events/count", h.Count)
	r.POST("/events/:event_id/notified", h.MarkNotified)
}

func (h *EventHandler) List(c *gin.Context) {
	start, ok := unixParam(c, "start")
	if !ok {
		return
	}
	end, ok := unixParam(c, "end")
	if !ok {
		return
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not be before start"})
		return
	}

	events, err := h.eventSvc.List(c.Request.Context(), &domain.EventQuery{
		AssetID:    c.Query("asset_id"),
		GeofenceID: c.Query("geofence_id"),
		Start:      start,
		End:        end,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if events == nil {
		events = []domain.CrossingEvent{}
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Count(c *gin.Context) {
	t := domain.EventType(c.Query("type"))
	if !t.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be ENTER or EXIT"})
		return
	}
	start, ok := unixParam(c, "start")
	if !ok {
		return
	}
	end, ok := unixParam(c, "end")
	if !ok {
		return
	}

	n, err := h.eventSvc.CountByType(c.Request.Context(), t, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": t, "count": n})
}

func (h *EventHandler) MarkNotified(c *gin.Context) {
	if err := h.eventSvc.MarkNotified(c.Request.Context(), c.Param("event_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
