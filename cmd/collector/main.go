package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"route-traffic-api/config"
	"route-traffic-api/dataset"
	"route-traffic-api/features"
	"route-traffic-api/geo"
	"route-traffic-api/logger"
	"route-traffic-api/metrics"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// ReadingPayload is one sensor point published on the MQTT topic.
type ReadingPayload struct {
	DateTime     string   `json:"date_time"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	AverageSpeed *float64 `json:"average_speed"`
}

type readingInserter interface {
	Insert(ctx context.Context, r dataset.SensorReading) (bool, error)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := pgxpool.New(ctx, cfg.Database.GetURL())
	if err != nil {
		log.WithError(err).Fatal("db pool init failed")
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.WithError(err).Fatal("db ping failed")
	}

	store := dataset.NewReadingStore(dbPool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("sensor_readings schema setup failed")
	}

	go serveHTTP(cfg.Server.MetricsAddr, log)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.URL)
	opts.SetClientID("route-collector-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetDefaultPublishHandler(func(client mqtt.Client, message mqtt.Message) {
		processMessage(ctx, store, message.Payload(), log.WithField("topic", message.Topic()))
	})
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(cfg.MQTT.Topic, 0, nil)
		token.Wait()
		if token.Error() != nil {
			log.WithError(token.Error()).Error("mqtt subscribe failed")
			return
		}
		log.WithField("topic", cfg.MQTT.Topic).Info("collector subscribed")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.WithError(err).Warn("mqtt connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		log.WithError(token.Error()).Fatal("mqtt connection failed")
	}

	log.WithFields(logrus.Fields{
		"mqtt":    cfg.MQTT.URL,
		"metrics": cfg.Server.MetricsAddr,
	}).Info("collector running")

	<-ctx.Done()
	log.Info("collector shutting down")
	client.Disconnect(250)
}

func serveHTTP(addr string, log logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.WithField("addr", addr).Info("metrics server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("metrics server failed")
	}
}

// parseReading decodes and validates one payload.
func parseReading(raw []byte) (dataset.SensorReading, error) {
	var payload ReadingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return dataset.SensorReading{}, fmt.Errorf("invalid payload: %w", err)
	}
	if payload.DateTime == "" || payload.Latitude == nil || payload.Longitude == nil || payload.AverageSpeed == nil {
		return dataset.SensorReading{}, errors.New("missing required fields in payload")
	}

	ts, err := features.ParseTime(payload.DateTime)
	if err != nil {
		return dataset.SensorReading{}, fmt.Errorf("invalid date_time: %w", err)
	}

	pos := geo.Coordinate{Lat: *payload.Latitude, Lon: *payload.Longitude}
	if !pos.Valid() {
		return dataset.SensorReading{}, errors.New("coordinate out of range")
	}
	if *payload.AverageSpeed < 0 {
		return dataset.SensorReading{}, errors.New("negative average_speed")
	}

	return dataset.SensorReading{Position: pos, Time: ts, AverageSpeed: *payload.AverageSpeed}, nil
}

func processMessage(ctx context.Context, store readingInserter, raw []byte, log logrus.FieldLogger) {
	metrics.ReadingsReceived.Inc()

	reading, err := parseReading(raw)
	if err != nil {
		metrics.ReadingsFailed.Inc()
		log.WithError(err).Warn("reading rejected")
		return
	}

	inserted, err := store.Insert(ctx, reading)
	if err != nil {
		metrics.ReadingsFailed.Inc()
		log.WithError(err).Error("db insert failed")
		return
	}
	if inserted {
		metrics.ReadingsStored.Inc()
	}
}
