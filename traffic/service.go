package traffic

import (
	"context"
	"errors"
	"time"

	"route-traffic-api/estimator"
	"route-traffic-api/features"
	"route-traffic-api/metrics"

	"github.com/sirupsen/logrus"
)

const ModelType = "route_based"

// SpeedEstimator is satisfied by *estimator.Estimator.
type SpeedEstimator interface {
	Predict(v features.Vector) (float64, error)
	Ready() bool
	Version() string
}

type RoutePrediction struct {
	RawSpeedKmh      float64
	AdjustedSpeedKmh float64
	TrafficLevel     int
	TrafficLabel     string
	DistanceKm       float64
	EstimatedMinutes float64
	Features         features.Vector
}

type UsedFeatures struct {
	StartLat  float64 `json:"start_lat"`
	StartLon  float64 `json:"start_lon"`
	EndLat    float64 `json:"end_lat"`
	EndLon    float64 `json:"end_lon"`
	Hour      int     `json:"hour"`
	DayOfWeek int     `json:"day_of_week"`
	Month     int     `json:"month"`
}

type Response struct {
	TrafficLevel     int          `json:"traffic_level"`
	TrafficLabel     string       `json:"traffic_label"`
	SpeedKmh         float64      `json:"speed_kmh"`
	RawSpeedKmh      float64      `json:"raw_speed_kmh"`
	EstimatedMinutes float64      `json:"estimated_minutes"`
	DistanceKm       float64      `json:"distance_km"`
	UsedFeatures     UsedFeatures `json:"used_features"`
	ModelType        string       `json:"model_type"`
}

func (p RoutePrediction) Response() Response {
	return Response{
		TrafficLevel:     p.TrafficLevel,
		TrafficLabel:     p.TrafficLabel,
		SpeedKmh:         round(p.AdjustedSpeedKmh, 1),
		RawSpeedKmh:      round(p.RawSpeedKmh, 1),
		EstimatedMinutes: p.EstimatedMinutes,
		DistanceKm:       round(p.DistanceKm, 2),
		UsedFeatures: UsedFeatures{
			StartLat:  p.Features.StartLat,
			StartLon:  p.Features.StartLon,
			EndLat:    p.Features.EndLat,
			EndLon:    p.Features.EndLon,
			Hour:      p.Features.Hour,
			DayOfWeek: p.Features.DayOfWeek,
			Month:     p.Features.Month,
		},
		ModelType: ModelType,
	}
}

type Service struct {
	estimator SpeedEstimator
	log       logrus.FieldLogger
}

func NewService(est SpeedEstimator, log logrus.FieldLogger) *Service {
	return &Service{estimator: est, log: log}
}

func (s *Service) ModelReady() bool {
	return s.estimator.Ready()
}

func (s *Service) ModelVersion() string {
	return s.estimator.Version()
}

// Predict runs features → model → time-of-day adjustment → classification.
func (s *Service) Predict(ctx context.Context, q features.RouteQuery) (RoutePrediction, error) {
	if err := ctx.Err(); err != nil {
		return RoutePrediction{}, err
	}
	start := time.Now()
	defer func() {
		metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	}()

	v := features.Build(q)

	raw, err := s.estimator.Predict(v)
	if err != nil {
		switch {
		case errors.Is(err, estimator.ErrModelUnavailable):
			metrics.PredictionsFailed.WithLabelValues("model_unavailable").Inc()
		default:
			metrics.PredictionsFailed.WithLabelValues("prediction_failed").Inc()
			s.log.WithError(err).WithFields(logrus.Fields{
				"start": q.Start,
				"end":   q.End,
				"hour":  v.Hour,
			}).Error("route model prediction failed")
		}
		return RoutePrediction{}, err
	}

	adjusted := AdjustForHour(raw, v.Hour)
	level, label := Classify(adjusted)
	metrics.PredictionsServed.WithLabelValues(label).Inc()

	return RoutePrediction{
		RawSpeedKmh:      raw,
		AdjustedSpeedKmh: adjusted,
		TrafficLevel:     level,
		TrafficLabel:     label,
		DistanceKm:       v.DistanceKm,
		EstimatedMinutes: ETAMinutes(v.DistanceKm, adjusted),
		Features:         v,
	}, nil
}
