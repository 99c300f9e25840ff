package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/service"
)

const maxBatchSize = 1000

type trackingService interface {
	Evaluate(ctx context.Context, assetID string, point domain.Coordinate, ts time.Time) (*domain.Evaluation, error)
	EvaluateBatch(ctx context.Context, samples []domain.LocationSample) []service.BatchResult
}

type locationRequest struct {
	AssetID   string   `json:"asset_id" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	// Timestamp is unix seconds; zero means now.
	Timestamp int64 `json:"timestamp"`
}

func (r *locationRequest) toSample() domain.LocationSample {
	s := domain.LocationSample{
		AssetID:  r.AssetID,
		Position: domain.Coordinate{Lat: *r.Latitude, Lon: *r.Longitude},
	}
	if r.Timestamp > 0 {
		s.Timestamp = time.Unix(r.Timestamp, 0)
	}
	return s
}

type batchItem struct {
	AssetID    string             `json:"asset_id"`
	Evaluation *domain.Evaluation `json:"evaluation,omitempty"`
	Error      string             `json:"error,omitempty"`
	Status     int                `json:"status"`
}

type LocationHandler struct {
	trackingSvc trackingService
	limiter     *rate.Limiter
}

// NewLocationHandler wires the ingest endpoints. A nil limiter disables
// throttling.
func NewLocationHandler(trackingSvc trackingService, limiter *rate.Limiter) *LocationHandler {
	return &LocationHandler{trackingSvc: trackingSvc, limiter: limiter}
}

func (h *LocationHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/locations")
	if h.limiter != nil {
		g.Use(RateLimit(h.limiter))
	}
	g.POST("", h.Ingest)
	g.POST("/batch", h.IngestBatch)
}

func (h *LocationHandler) Ingest(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := req.toSample()
	ev, err := h.trackingSvc.Evaluate(c.Request.Context(), s.AssetID, s.Position, s.Timestamp)
	if err != nil {
		if ev != nil {
			// Some geofences failed on storage; the sample can be retried.
			c.JSON(http.StatusServiceUnavailable, ev)
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *LocationHandler) IngestBatch(c *gin.Context) {
	var reqs []locationRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(reqs) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch too large"})
		return
	}

	samples := make([]domain.LocationSample, len(reqs))
	for i := range reqs {
		if reqs[i].Latitude == nil || reqs[i].Longitude == nil || reqs[i].AssetID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asset_id, latitude and longitude are required", "index": i})
			return
		}
		samples[i] = reqs[i].toSample()
	}

	results := h.trackingSvc.EvaluateBatch(c.Request.Context(), samples)
	items := make([]batchItem, len(results))
	for i, r := range results {
		items[i] = batchItem{AssetID: r.Sample.AssetID, Evaluation: r.Evaluation, Status: http.StatusOK}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
			items[i].Status = statusFor(r.Err)
			if r.Evaluation != nil && !errors.Is(r.Err, domain.ErrNotFound) {
				items[i].Status = http.StatusServiceUnavailable
			}
		}
	}
	c.JSON(http.StatusMultiStatus, items)
}
