package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"fleettrack/internal/bus"
	"fleettrack/internal/core/model"
	"fleettrack/internal/core/repository"
)

// AlertService evaluates every persisted fix against the vehicle's geofences
// and the overspeed limit. Evaluation is fire-and-forget from the pipeline's
// point of view: the fix it runs for is already committed, so all failures
// here end as log entries.
type AlertService struct {
	geofenceRepo repository.GeofenceRepository
	alertRepo    repository.AlertRepository
	events       *bus.Bus
	logger       *slog.Logger

	overspeedLimit float64 // km/h, 0 disables

	mu     sync.Mutex
	inside map[string]bool // vehicleID:geofenceID -> last containment
}

func NewAlertService(
	geofenceRepo repository.GeofenceRepository,
	alertRepo repository.AlertRepository,
	events *bus.Bus,
	overspeedLimit float64,
	logger *slog.Logger,
) *AlertService {
	return &AlertService{
		geofenceRepo:   geofenceRepo,
		alertRepo:      alertRepo,
		events:         events,
		logger:         logger,
		overspeedLimit: overspeedLimit,
		inside:         make(map[string]bool),
	}
}

// Evaluate checks overspeed and geofence transitions for one fix.
func (s *AlertService) Evaluate(ctx context.Context, vehicleID string, fix *model.Fix) {
	if vehicleID == "" || fix == nil {
		return
	}

	if s.overspeedLimit > 0 && fix.Speed > s.overspeedLimit {
		s.raise(ctx, model.NewAlert(vehicleID, fix.DeviceID, model.AlertOverspeed,
			fmt.Sprintf("speed %.1f km/h exceeds limit %.1f km/h", fix.Speed, s.overspeedLimit),
			fix.Latitude, fix.Longitude))
	}

	geofences, err := s.geofenceRepo.FindByVehicleID(vehicleID)
	if err != nil {
		s.logger.Error("geofence lookup failed", "vehicleId", vehicleID, "error", err)
		return
	}

	for _, fence := range geofences {
		now := fence.Contains(fix.Latitude, fix.Longitude)
		key := vehicleID + ":" + fence.ID

		s.mu.Lock()
		prev, seen := s.inside[key]
		s.inside[key] = now
		s.mu.Unlock()

		// The first fix only seeds the containment state; alerting on it
		// would fire a bogus transition on every server restart.
		if !seen || prev == now {
			continue
		}

		kind := model.AlertGeofenceExit
		verb := "left"
		if now {
			kind = model.AlertGeofenceEnter
			verb = "entered"
		}
		s.raise(ctx, model.NewAlert(vehicleID, fix.DeviceID, kind,
			fmt.Sprintf("vehicle %s geofence %q", verb, fence.Name),
			fix.Latitude, fix.Longitude))
	}
}

func (s *AlertService) raise(_ context.Context, alert *model.Alert) {
	if err := s.alertRepo.Create(alert); err != nil {
		s.logger.Error("alert persist failed", "vehicleId", alert.VehicleID, "kind", alert.Kind, "error", err)
	}
	if err := s.events.PublishAlert(alert); err != nil {
		s.logger.Error("new_alert publish failed", "vehicleId", alert.VehicleID, "kind", alert.Kind, "error", err)
	}
}
