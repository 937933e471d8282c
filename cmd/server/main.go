package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleettrack/internal/api/router"
	"fleettrack/internal/bus"
	"fleettrack/internal/cache"
	"fleettrack/internal/config"
	"fleettrack/internal/core/repository"
	"fleettrack/internal/core/service"
	"fleettrack/internal/observability"
	"fleettrack/internal/protocol/server"
	"fleettrack/internal/session"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()

	var (
		deviceRepo   repository.DeviceRepository
		fixRepo      repository.FixRepository
		geofenceRepo repository.GeofenceRepository
		alertRepo    repository.AlertRepository
	)
	if cfg.TestMode {
		logger.Info("running in test mode with in-memory repositories")
		deviceRepo = repository.NewInMemoryDeviceRepository()
		fixRepo = repository.NewInMemoryFixRepository()
		geofenceRepo = repository.NewInMemoryGeofenceRepository()
		alertRepo = repository.NewInMemoryAlertRepository()
	} else {
		db, err := config.ConnectMongoDB(cfg)
		if err != nil {
			logger.Error("failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)
		deviceRepo = repository.NewMongoDeviceRepository(db)
		fixRepo = repository.NewMongoFixRepository(db)
		geofenceRepo = repository.NewMongoGeofenceRepository(db)
		alertRepo = repository.NewMongoAlertRepository(db)
	}

	cache.Initialize(cfg.RedisURL, logger)
	defer cache.Close()

	events, err := bus.Connect(cfg.NATSURL)
	if err != nil {
		logger.Warn("NATS unavailable, events stay in-process", "url", cfg.NATSURL, "error", err)
		events = bus.NewLocal()
	}
	defer events.Close()

	alerts := service.NewAlertService(geofenceRepo, alertRepo, events, cfg.OverspeedLimit, logger)
	ingest := service.NewIngestService(deviceRepo, fixRepo, events, alerts, logger)

	registry := session.NewRegistry()
	tcpServer := server.NewTCPServer(cfg.TCPPort, registry, ingest, logger)
	if err := tcpServer.Start(); err != nil {
		logger.Error("failed to start TCP server", "port", cfg.TCPPort, "error", err)
		os.Exit(1)
	}
	logger.Info("TCP server listening", "port", cfg.TCPPort)

	go observability.StartMetricsServer(cfg.MetricsPort)

	httpServer := &http.Server{
		Addr:    "0.0.0.0:" + cfg.HTTPPort,
		Handler: router.NewRouter(ingest, registry, events, logger),
	}
	go func() {
		logger.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	tcpServer.Stop()
	logger.Info("shutdown complete")
}
