package router

import (
	"log/slog"
	"net/http"

	"fleettrack/internal/api/handler"
	"fleettrack/internal/api/middleware"
	"fleettrack/internal/api/ws"
	"fleettrack/internal/bus"
	"fleettrack/internal/core/service"
	"fleettrack/internal/session"
)

func NewRouter(
	ingest *service.IngestService,
	registry *session.Registry,
	events *bus.Bus,
	logger *slog.Logger,
) http.Handler {
	gpsHandler := handler.NewGPSHandler(ingest, logger)
	statusHandler := handler.NewStatusHandler(registry)
	hub := ws.NewHub(events, logger)

	mux := http.NewServeMux()

	logging := middleware.LoggingMiddleware(logger)
	withMiddleware := func(h http.Handler) http.Handler {
		return middleware.CORSMiddleware(logging(h))
	}

	// The device-facing GET transport answers on both the root path and /gps.
	mux.Handle("/", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		gpsHandler.Query(w, r)
	})))

	mux.Handle("/gps", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		gpsHandler.Query(w, r)
	})))

	mux.Handle("/gps/update", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			gpsHandler.Update(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/devices/latest", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		gpsHandler.Latest(w, r)
	})))

	mux.Handle("/health", withMiddleware(http.HandlerFunc(statusHandler.Health)))

	mux.Handle("/devices/connected", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		statusHandler.Connected(w, r)
	})))

	mux.Handle("/ws", logging(hub))

	return mux
}
