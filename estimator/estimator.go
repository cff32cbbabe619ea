package estimator

import (
	"errors"
	"fmt"
	"math"

	"route-traffic-api/features"

	"github.com/sirupsen/logrus"
)

var (
	ErrModelUnavailable = errors.New("route model is not loaded")
	ErrPredictionFailed = errors.New("route model prediction failed")
)

// Estimator wraps the loaded route model. It is either ready, holding a
// model, or unavailable for the life of the process. The model is only read
// after construction, so Predict is safe for concurrent use.
type Estimator struct {
	model   Regressor
	version string
	loadErr error
}

// Load reads the artifact at path. A missing or invalid artifact leaves the
// estimator unavailable instead of failing, so the API can still report health.
func Load(path string, log logrus.FieldLogger) *Estimator {
	entry := log.WithField("model_path", path)

	artifact, err := ReadArtifact(path)
	if err != nil {
		entry.WithError(err).Warn("route model not loaded, predictions disabled")
		return &Estimator{loadErr: err}
	}
	model, err := artifact.Regressor()
	if err != nil {
		entry.WithError(err).Error("route model artifact rejected, predictions disabled")
		return &Estimator{loadErr: err}
	}

	entry.WithFields(logrus.Fields{
		"kind":    artifact.Kind,
		"version": artifact.Version,
		"trees":   len(artifact.Trees),
	}).Info("route model loaded")
	return &Estimator{model: model, version: artifact.Version}
}

// New returns a ready estimator around model.
func New(model Regressor, version string) *Estimator {
	if model == nil {
		return &Estimator{loadErr: ErrModelUnavailable}
	}
	return &Estimator{model: model, version: version}
}

func (e *Estimator) Ready() bool {
	return e.model != nil
}

func (e *Estimator) Version() string {
	return e.version
}

// LoadError is the reason the estimator is unavailable, nil when ready.
func (e *Estimator) LoadError() error {
	return e.loadErr
}

func (e *Estimator) Predict(v features.Vector) (speed float64, err error) {
	if e.model == nil {
		return 0, ErrModelUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			speed, err = 0, fmt.Errorf("%w: panic: %v", ErrPredictionFailed, r)
		}
	}()

	speed, err = e.model.Predict(v.Values())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return 0, fmt.Errorf("%w: non-finite output %v", ErrPredictionFailed, speed)
	}
	return speed, nil
}
