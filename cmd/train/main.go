package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"route-traffic-api/config"
	"route-traffic-api/dataset"
	"route-traffic-api/estimator"
	"route-traffic-api/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const ridgeLambda = 1e-3

type options struct {
	Source     string
	CSVPath    string
	Seed       int64
	Routes     int
	Points     int
	OutDataset string
	OutModel   string
	TestRatio  float64
	From, To   string
}

func main() {
	var opts options
	flag.StringVar(&opts.Source, "source", "csv", "reading source: csv or postgres")
	flag.StringVar(&opts.CSVPath, "csv", "traffic_density.csv", "sensor readings CSV (DATE_TIME, LATITUDE, LONGITUDE, AVERAGE_SPEED)")
	flag.Int64Var(&opts.Seed, "seed", 42, "sampling seed")
	flag.IntVar(&opts.Routes, "routes", dataset.DefaultRoutesPerGroup, "routes drawn per timestamp group")
	flag.IntVar(&opts.Points, "points", dataset.DefaultRoutePoints, "interpolation segments per route")
	flag.StringVar(&opts.OutDataset, "out-dataset", "route_dataset.csv", "labeled dataset output path")
	flag.StringVar(&opts.OutModel, "out-model", "", "optional baseline model artifact output path")
	flag.Float64Var(&opts.TestRatio, "test-ratio", 0.2, "holdout share used to report R²")
	flag.StringVar(&opts.From, "from", "", "postgres source: earliest reading time")
	flag.StringVar(&opts.To, "to", "", "postgres source: latest reading time")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	readings, err := loadReadings(ctx, opts, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("loading readings failed")
	}
	if err := run(opts, readings, log); err != nil {
		log.WithError(err).Fatal("training failed")
	}
}

func loadReadings(ctx context.Context, opts options, db config.DatabaseConfig) ([]dataset.SensorReading, error) {
	switch opts.Source {
	case "csv":
		return dataset.LoadCSVFile(opts.CSVPath)
	case "postgres":
		from, to, err := parseRange(opts.From, opts.To)
		if err != nil {
			return nil, err
		}
		pool, err := pgxpool.New(ctx, db.GetURL())
		if err != nil {
			return nil, fmt.Errorf("db pool init: %w", err)
		}
		defer pool.Close()
		return dataset.NewReadingStore(pool).Load(ctx, from, to)
	default:
		return nil, fmt.Errorf("unknown source %q", opts.Source)
	}
}

func parseRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		if from, err = time.Parse(time.RFC3339, fromStr); err != nil {
			return from, to, fmt.Errorf("invalid -from: %w", err)
		}
	}
	if toStr != "" {
		if to, err = time.Parse(time.RFC3339, toStr); err != nil {
			return from, to, fmt.Errorf("invalid -to: %w", err)
		}
	}
	return from, to, nil
}

// run builds the labeled dataset and, when requested, the baseline artifact.
func run(opts options, readings []dataset.SensorReading, log logrus.FieldLogger) error {
	if opts.TestRatio < 0 || opts.TestRatio >= 1 {
		return fmt.Errorf("test ratio must be in [0, 1), got %v", opts.TestRatio)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	gen := dataset.NewGenerator(rng, log)
	gen.RoutesPerGroup = opts.Routes
	gen.RoutePoints = opts.Points

	samples := gen.Generate(readings)
	log.WithFields(logrus.Fields{
		"readings": len(readings),
		"samples":  len(samples),
	}).Info("dataset generated")
	if len(samples) == 0 {
		return errors.New("no route samples generated")
	}

	if err := writeDataset(opts.OutDataset, samples); err != nil {
		return err
	}
	log.WithField("path", opts.OutDataset).Info("dataset written")

	if opts.OutModel == "" {
		return nil
	}

	train, test := splitHoldout(samples, opts.TestRatio, rng)
	rows, labels := matrix(train)
	artifact, err := estimator.FitBaseline(rows, labels, ridgeLambda, "baseline-"+time.Now().UTC().Format("20060102T150405Z"))
	if err != nil {
		return fmt.Errorf("fit baseline: %w", err)
	}

	if len(test) > 0 {
		model, err := artifact.Regressor()
		if err != nil {
			return err
		}
		testRows, testLabels := matrix(test)
		r2, err := estimator.Score(model, testRows, testLabels)
		if err != nil {
			return fmt.Errorf("score holdout: %w", err)
		}
		log.WithFields(logrus.Fields{"train": len(train), "test": len(test), "r2": r2}).Info("baseline evaluated")
	}

	if err := estimator.WriteArtifact(opts.OutModel, artifact); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": opts.OutModel, "version": artifact.Version}).Info("model artifact written")
	return nil
}

func writeDataset(path string, samples []dataset.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	if err := dataset.WriteSamplesCSV(f, samples); err != nil {
		f.Close()
		return fmt.Errorf("write dataset: %w", err)
	}
	return f.Close()
}

// splitHoldout shuffles a copy of samples and cuts off the test share.
func splitHoldout(samples []dataset.Sample, ratio float64, rng *rand.Rand) (train, test []dataset.Sample) {
	shuffled := append([]dataset.Sample(nil), samples...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	n := int(float64(len(shuffled)) * ratio)
	if n >= len(shuffled) {
		n = len(shuffled) - 1
	}
	return shuffled[n:], shuffled[:n]
}

func matrix(samples []dataset.Sample) ([][]float64, []float64) {
	rows := make([][]float64, len(samples))
	labels := make([]float64, len(samples))
	for i, s := range samples {
		rows[i] = s.Features.Values()
		labels[i] = s.AverageSpeed
	}
	return rows, labels
}
