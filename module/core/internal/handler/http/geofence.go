package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/geotrack/module/core/domain"
)

type geofenceService interface {
	Create(ctx context.Context, g *domain.Geofence) error
	Update(ctx context.Context, id string, g *domain.Geofence) (*domain.Geofence, error)
	Get(ctx context.Context, id string) (*domain.Geofence, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Geofence, error)
	Deactivate(ctx context.Context, id string) error
}

type geofenceRequest struct {
	Name         string              `json:"name" binding:"required"`
	Description  string              `json:"description"`
	Kind         domain.GeofenceKind `json:"kind" binding:"required"`
	Center       *domain.Coordinate  `json:"center"`
	RadiusMeters float64             `json:"radius_meters"`
	Polygon      []domain.Coordinate `json:"polygon"`
	AlertPolicy  domain.AlertPolicy  `json:"alert_policy"`
}

func (r *geofenceRequest) toDomain() *domain.Geofence {
	return &domain.Geofence{
		Name:         r.Name,
		Description:  r.Description,
		Kind:         r.Kind,
		Center:       r.Center,
		RadiusMeters: r.RadiusMeters,
		Polygon:      r.Polygon,
		AlertPolicy:  r.AlertPolicy,
	}
}

type GeofenceHandler struct {
	geofenceSvc geofenceService
}

func NewGeofenceHandler(geofenceSvc geofenceService) *GeofenceHandler {
	return &GeofenceHandler{geofenceSvc: geofenceSvc}
}

func (h *GeofenceHandler) Register(r *gin.RouterGroup) {
	r.GET("/geofences", h.List)
	r.POST("/geofences", h.Create)
	r.GET("/geofences/:geofence_id", h.Get)
	r.PUT("/geofences/:geofence_id", h.Update)
	r.DELETE("/geofences/:geofence_id", h.Delete)
}

func (h *GeofenceHandler) List(c *gin.Context) {
	geofences, err := h.geofenceSvc.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, geofences)
}

func (h *GeofenceHandler) Create(c *gin.Context) {
	var req geofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g := req.toDomain()
	if err := h.geofenceSvc.Create(c.Request.Context(), g); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *GeofenceHandler) Get(c *gin.Context) {
	g, err := h.geofenceSvc.Get(c.Request.Context(), c.Param("geofence_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GeofenceHandler) Update(c *gin.Context) {
	var req geofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.geofenceSvc.Update(c.Request.Context(), c.Param("geofence_id"), req.toDomain())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GeofenceHandler) Delete(c *gin.Context) {
	if err := h.geofenceSvc.Deactivate(c.Request.Context(), c.Param("geofence_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
