package handlers

import (
	"time"

	"route-traffic-api/config"
	"route-traffic-api/middleware"
	"route-traffic-api/services"
	"route-traffic-api/traffic"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the shared components the HTTP routes are built from.
// DB may be nil, in which case the account routes are not mounted.
type Dependencies struct {
	Config  *config.Config
	Service *traffic.Service
	Cache   *services.CacheService
	DB      *gorm.DB
	Log     logrus.FieldLogger
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Log))
	router.Use(middleware.SetupCORS(deps.Config.CORS))

	cacheTTL := time.Duration(deps.Config.Model.PredictionCacheSec) * time.Second
	prediction := NewPredictionHandler(deps.Service, deps.Cache, cacheTTL, deps.Log)

	router.GET("/health", prediction.Health)
	router.POST("/predict", prediction.Predict)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.DB == nil {
		return router
	}

	authService := services.NewAuthService(deps.DB, deps.Config.JWT)
	auth := NewAuthHandler(authService)
	history := NewHistoryHandler(deps.DB)
	favorites := NewFavoritesHandler(deps.DB)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", auth.Register)
		authGroup.POST("/login", auth.Login)
		authGroup.POST("/logout", auth.Logout)
	}

	protected := router.Group("/", middleware.RequireAuth(authService))
	{
		protected.GET("/history", history.List)
		protected.POST("/history", history.Create)
		protected.DELETE("/history/:id", history.Delete)

		protected.GET("/favorites", favorites.List)
		protected.POST("/favorites", favorites.Create)
		protected.DELETE("/favorites/:id", favorites.Delete)
	}

	router.GET("/ws/predictions", PredictionStream(deps.Cache, authService, deps.Log))

	return router
}
