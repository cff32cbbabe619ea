package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"route-traffic-api/estimator"
	"route-traffic-api/features"
	"route-traffic-api/metrics"
	"route-traffic-api/services"
	"route-traffic-api/traffic"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PredictionHandler struct {
	service  *traffic.Service
	cache    *services.CacheService
	cacheTTL time.Duration
	log      logrus.FieldLogger
}

func NewPredictionHandler(service *traffic.Service, cache *services.CacheService, cacheTTL time.Duration, log logrus.FieldLogger) *PredictionHandler {
	return &PredictionHandler{service: service, cache: cache, cacheTTL: cacheTTL, log: log}
}

func (h *PredictionHandler) Health(c *gin.Context) {
	status, routeModel := "ok", "ok"
	if !h.service.ModelReady() {
		status, routeModel = "error", "not_loaded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"route_model":   routeModel,
		"model_type":    traffic.ModelType,
		"model_version": h.service.ModelVersion(),
	})
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	if !h.service.ModelReady() {
		metrics.PredictionsFailed.WithLabelValues("model_unavailable").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": estimator.ErrModelUnavailable.Error()})
		return
	}

	var req traffic.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.PredictionsFailed.WithLabelValues("validation").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON body expected with datetime, start_lat, start_lon, end_lat, end_lon"})
		return
	}

	query, err := traffic.ParseRequest(req)
	if err != nil {
		metrics.PredictionsFailed.WithLabelValues("validation").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cacheKey := predictionCacheKey(query)

	var cached traffic.Response
	if found, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		metrics.PredictionCacheHits.Inc()
		c.JSON(http.StatusOK, cached)
		return
	} else if err != nil {
		h.log.WithError(err).Warn("prediction cache read failed")
	}

	prediction, err := h.service.Predict(ctx, query)
	if err != nil {
		switch {
		case errors.Is(err, estimator.ErrModelUnavailable):
			c.JSON(http.StatusInternalServerError, gin.H{"error": estimator.ErrModelUnavailable.Error()})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request canceled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("route prediction failed: %v", err)})
		}
		return
	}

	resp := prediction.Response()
	go h.share(cacheKey, resp)

	c.JSON(http.StatusOK, resp)
}

// share caches resp and publishes it to live subscribers.
func (h *PredictionHandler) share(key string, resp traffic.Response) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.cache.Set(ctx, key, resp, h.cacheTTL); err != nil {
		h.log.WithError(err).Warn("prediction cache write failed")
	}
	if !h.cache.Available() {
		return
	}
	if err := h.cache.Publish(ctx, services.PredictionsChannel, resp); err != nil {
		h.log.WithError(err).Warn("prediction publish failed")
		return
	}
	metrics.PredictionsPublished.Inc()
}

// predictionCacheKey covers every model input, so equal keys give equal responses.
func predictionCacheKey(q features.RouteQuery) string {
	t := features.ExtractTemporal(q.Time)
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return fmt.Sprintf("predict:%s,%s:%s,%s:%d:%d:%d",
		f(q.Start.Lat), f(q.Start.Lon), f(q.End.Lat), f(q.End.Lon),
		t.Hour, t.DayOfWeek, t.Month)
}
