package handlers

import (
	"net/http"
	"strconv"
	"time"

	"route-traffic-api/features"
	"route-traffic-api/middleware"
	"route-traffic-api/models"
	"route-traffic-api/traffic"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HistoryHandler struct {
	db *gorm.DB
}

func NewHistoryHandler(db *gorm.DB) *HistoryHandler {
	return &HistoryHandler{db: db}
}

type HistoryRequest struct {
	Origin           string  `json:"origin" binding:"required,max=500"`
	Destination      string  `json:"destination" binding:"required,max=500"`
	OriginLat        float64 `json:"origin_lat"`
	OriginLon        float64 `json:"origin_lon"`
	DestinationLat   float64 `json:"destination_lat"`
	DestinationLon   float64 `json:"destination_lon"`
	DateTime         string  `json:"datetime" binding:"required"`
	TrafficLevel     int     `json:"traffic_level" binding:"min=0,max=2"`
	SpeedKMH         float64 `json:"speed_kmh"`
	EstimatedMinutes float64 `json:"estimated_minutes"`
	DistanceKM       float64 `json:"distance_km"`
}

func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	p, err := ParsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := h.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(p.Limit + 1)
	if p.Before != nil {
		query = query.Where("created_at < ?", *p.Before)
	}

	var rows []models.SearchHistory
	if err := query.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	c.JSON(http.StatusOK, page(rows, p.Limit, func(r models.SearchHistory) time.Time { return r.CreatedAt }))
}

func (h *HistoryHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req HistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	when, err := features.ParseTime(req.DateTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid datetime format"})
		return
	}

	entry := models.SearchHistory{
		UserID:           userID,
		Origin:           req.Origin,
		Destination:      req.Destination,
		OriginLat:        req.OriginLat,
		OriginLon:        req.OriginLon,
		DestinationLat:   req.DestinationLat,
		DestinationLon:   req.DestinationLon,
		DateTime:         when,
		TrafficLevel:     req.TrafficLevel,
		TrafficLabel:     traffic.LevelLabel(req.TrafficLevel),
		SpeedKMH:         req.SpeedKMH,
		EstimatedMinutes: req.EstimatedMinutes,
		DistanceKM:       req.DistanceKM,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save history"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *HistoryHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid history id"})
		return
	}

	res := h.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.SearchHistory{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete history"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
