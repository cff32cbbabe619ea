package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "routeflow_api_predictions_total",
		Help: "Total number of route predictions served, by traffic label.",
	}, []string{"traffic_label"})
	PredictionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "routeflow_api_predictions_failed_total",
		Help: "Total number of route predictions that failed, by reason.",
	}, []string{"reason"})
	PredictionCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routeflow_api_prediction_cache_hits_total",
		Help: "Total number of predictions answered from Redis.",
	})
	PredictionsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routeflow_api_predictions_published_total",
		Help: "Total number of predictions published to Redis.",
	})
	PredictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "routeflow_api_prediction_duration_seconds",
		Help:    "Duration of the feature, model and post-processing chain.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})
	ModelReady = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "routeflow_api_model_ready",
		Help: "1 when the route model artifact is loaded, 0 otherwise.",
	})

	ReadingsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routeflow_collector_readings_received_total",
		Help: "Total number of MQTT sensor readings received by the collector.",
	})
	ReadingsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routeflow_collector_readings_stored_total",
		Help: "Total number of sensor readings inserted into Postgres.",
	})
	ReadingsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routeflow_collector_readings_failed_total",
		Help: "Total number of sensor readings rejected or failed to store.",
	})
)
