package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"fleettrack/internal/core/model"
	"fleettrack/internal/core/service"
	"fleettrack/internal/observability"
)

// GPSHandler serves the HTTP transports. The GET surface mirrors the HEAD
// protocol's parameter aliases and always answers 200 "OK": trackers differ
// in what they treat as a delivery failure, so the safe answer is success.
// Only the JSON update endpoint has a strict contract.
type GPSHandler struct {
	ingest *service.IngestService
	logger *slog.Logger
}

func NewGPSHandler(ingest *service.IngestService, logger *slog.Logger) *GPSHandler {
	return &GPSHandler{ingest: ingest, logger: logger}
}

// Query parameter aliases for the GET transport; a superset of the HEAD
// decoder's, since HTTP-capable firmware sprouts even more spellings.
var (
	queryIDParams       = []string{"id", "device_id", "imei", "deviceid"}
	queryLatParams      = []string{"lat", "latitude"}
	queryLonParams      = []string{"lon", "lng", "longitude"}
	querySpeedParams    = []string{"speed", "spd"}
	queryHeadingParams  = []string{"heading", "course", "dir"}
	queryAccuracyParams = []string{"accuracy", "acc"}
)

// Query handles GET / and GET /gps.
func (h *GPSHandler) Query(w http.ResponseWriter, r *http.Request) {
	observability.FramesReceived.WithLabelValues("http").Inc()

	values := r.URL.Query()
	deviceID := firstQuery(values, queryIDParams)
	lat, latOK := firstQueryFloat(values, queryLatParams)
	lon, lonOK := firstQueryFloat(values, queryLonParams)

	if deviceID != "" && latOK && lonOK && model.ValidCoordinates(lat, lon) {
		fix := model.NewFix(deviceID, "http", lat, lon)
		if speed, ok := firstQueryFloat(values, querySpeedParams); ok {
			fix.Speed = speed
		}
		if heading, ok := firstQueryFloat(values, queryHeadingParams); ok {
			fix.Heading = heading
		}
		if accuracy, ok := firstQueryFloat(values, queryAccuracyParams); ok {
			fix.Accuracy = accuracy
		}
		observability.FixesDecoded.WithLabelValues("http").Inc()

		if err := h.ingest.ProcessFix(r.Context(), fix); err != nil {
			// The device still gets its 200; backend trouble is ours.
			h.logger.Error("pipeline failed for HTTP fix", "deviceId", deviceID, "error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type updateRequest struct {
	DeviceID  string   `json:"device_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Speed     float64  `json:"speed"`
	Heading   float64  `json:"heading"`
	Accuracy  float64  `json:"accuracy"`
}

// Update handles POST /gps/update, the one transport with a strict contract:
// 400 on missing required fields, 500 on internal failure, 200 otherwise.
func (h *GPSHandler) Update(w http.ResponseWriter, r *http.Request) {
	observability.FramesReceived.WithLabelValues("http").Inc()

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.DeviceID == "" || req.Latitude == nil || req.Longitude == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "device_id, latitude and longitude are required"})
		return
	}
	if !model.ValidCoordinates(*req.Latitude, *req.Longitude) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coordinates out of bounds"})
		return
	}

	fix := model.NewFix(req.DeviceID, "http", *req.Latitude, *req.Longitude)
	fix.Speed = req.Speed
	fix.Heading = req.Heading
	if req.Accuracy > 0 {
		fix.Accuracy = req.Accuracy
	}

	if err := h.ingest.ProcessFix(r.Context(), fix); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store location"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Latest handles GET /devices/latest, returning the newest fix for a device.
func (h *GPSHandler) Latest(w http.ResponseWriter, r *http.Request) {
	deviceID := firstQuery(r.URL.Query(), queryIDParams)
	if deviceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "device id is required"})
		return
	}

	fix, err := h.ingest.LatestFix(r.Context(), deviceID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load latest fix"})
		return
	}
	if fix == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no fix recorded for device"})
		return
	}
	writeJSON(w, http.StatusOK, fix)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func firstQuery(values url.Values, names []string) string {
	for _, name := range names {
		if v := values.Get(name); v != "" {
			return v
		}
	}
	return ""
}

func firstQueryFloat(values url.Values, names []string) (float64, bool) {
	raw := firstQuery(values, names)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
