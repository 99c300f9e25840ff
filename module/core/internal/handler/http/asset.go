package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/geotrack/module/core/domain"
)

type assetService interface {
	Create(ctx context.Context, a *domain.Asset) error
	Update(ctx context.Context, id string, a *domain.Asset) (*domain.Asset, error)
	Get(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Asset, error)
	Deactivate(ctx context.Context, id string) error
}

type locationService interface {
	GetLatest(ctx context.Context, assetID string) (*domain.AssetLocation, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.AssetLocation, error)
}

type assetEventService interface {
	Stats(ctx context.Context, assetID string, start, end time.Time) (*domain.AssetStats, error)
	IsInside(ctx context.Context, assetID, geofenceID string) (bool, error)
}

type assetRequest struct {
	Name        string           `json:"name" binding:"required"`
	Type        domain.AssetType `json:"type" binding:"required"`
	Description string           `json:"description"`
}

type locationResponse struct {
	AssetID   string  `json:"asset_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type AssetHandler struct {
	assetSvc    assetService
	locationSvc locationService
	eventSvc    assetEventService
}

func NewAssetHandler(assetSvc assetService, locationSvc locationService, eventSvc assetEventService) *AssetHandler {
	return &AssetHandler{assetSvc: assetSvc, locationSvc: locationSvc, eventSvc: eventSvc}
}

func (h *AssetHandler) Register(r *gin.RouterGroup) {
	r.GET("/assets", h.List)
	r.POST("/assets", h.Create)
	r.GET("/assets/:asset_id", h.Get)
	r.PUT("/assets/:asset_id", h.Update)
	r.DELETE("/assets/:asset_id", h.Delete)
	r.GET("/assets/:asset_id/location", h.GetLatestLocation)
	r.GET("/assets/:asset_id/history", h.GetHistory)
	r.GET("/assets/:asset_id/stats", h.GetStats)
	r.GET("/assets/:asset_id/geofences/:geofence_id/state", h.GetGeofenceState)
}

func (h *AssetHandler) List(c *gin.Context) {
	assets, err := h.assetSvc.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *AssetHandler) Create(c *gin.Context) {
	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a := &domain.Asset{Name: req.Name, Type: req.Type, Description: req.Description}
	if err := h.assetSvc.Create(c.Request.Context(), a); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AssetHandler) Get(c *gin.Context) {
	a, err := h.assetSvc.Get(c.Request.Context(), c.Param("asset_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AssetHandler) Update(c *gin.Context) {
	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.assetSvc.Update(c.Request.Context(), c.Param("asset_id"),
		&domain.Asset{Name: req.Name, Type: req.Type, Description: req.Description})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AssetHandler) Delete(c *gin.Context) {
	if err := h.assetSvc.Deactivate(c.Request.Context(), c.Param("asset_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AssetHandler) GetLatestLocation(c *gin.Context) {
	loc, err := h.locationSvc.GetLatest(c.Request.Context(), c.Param("asset_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLocationResponse(loc))
}

func (h *AssetHandler) GetHistory(c *gin.Context) {
	start, ok := unixParam(c, "start")
	if !ok {
		return
	}
	end, ok := unixParam(c, "end")
	if !ok {
		return
	}
	if start.IsZero() || end.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end are required"})
		return
	}

	query := &domain.HistoryQuery{AssetID: c.Param("asset_id"), Start: start, End: end}
	locations, err := h.locationSvc.GetHistory(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}

	results := make([]locationResponse, len(locations))
	for i := range locations {
		results[i] = toLocationResponse(&locations[i])
	}
	c.JSON(http.StatusOK, results)
}

func (h *AssetHandler) GetStats(c *gin.Context) {
	start, ok := unixParam(c, "start")
	if !ok {
		return
	}
	end, ok := unixParam(c, "end")
	if !ok {
		return
	}

	stats, err := h.eventSvc.Stats(c.Request.Context(), c.Param("asset_id"), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AssetHandler) GetGeofenceState(c *gin.Context) {
	assetID, geofenceID := c.Param("asset_id"), c.Param("geofence_id")
	inside, err := h.eventSvc.IsInside(c.Request.Context(), assetID, geofenceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset_id": assetID, "geofence_id": geofenceID, "inside": inside})
}

func toLocationResponse(loc *domain.AssetLocation) locationResponse {
	return locationResponse{
		AssetID:   loc.AssetID,
		Latitude:  loc.Position.Lat,
		Longitude: loc.Position.Lon,
		Timestamp: loc.Timestamp.Unix(),
	}
}
