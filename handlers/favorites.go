package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"route-traffic-api/middleware"
	"route-traffic-api/models"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type FavoritesHandler struct {
	db *gorm.DB
}

func NewFavoritesHandler(db *gorm.DB) *FavoritesHandler {
	return &FavoritesHandler{db: db}
}

type FavoriteRequest struct {
	Origin         string  `json:"origin" binding:"required,max=500"`
	Destination    string  `json:"destination" binding:"required,max=500"`
	OriginLat      float64 `json:"origin_lat"`
	OriginLon      float64 `json:"origin_lon"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLon float64 `json:"destination_lon"`
	Name           *string `json:"name" binding:"omitempty,max=255"`
}

func (h *FavoritesHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var rows []models.Favorite
	if err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *FavoritesHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fav := models.Favorite{
		UserID:         userID,
		Origin:         strings.TrimSpace(req.Origin),
		Destination:    strings.TrimSpace(req.Destination),
		OriginLat:      req.OriginLat,
		OriginLon:      req.OriginLon,
		DestinationLat: req.DestinationLat,
		DestinationLon: req.DestinationLon,
		Name:           req.Name,
	}
	if err := h.db.Create(&fav).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "route already in favorites"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save favorite"})
		return
	}

	c.JSON(http.StatusCreated, fav)
}

func (h *FavoritesHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid favorite id"})
		return
	}

	res := h.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Favorite{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete favorite"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// isUniqueViolation reports a Postgres 23505 error, translated by gorm or not.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
