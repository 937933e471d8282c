package service

import (
	"context"
	"testing"

	"fleettrack/internal/bus"
	"fleettrack/internal/core/model"
	"fleettrack/internal/core/repository"
)

func newAlertFixture(t *testing.T, limit float64) (*AlertService, repository.GeofenceRepository, repository.AlertRepository, *bus.Bus) {
	t.Helper()
	geofenceRepo := repository.NewInMemoryGeofenceRepository()
	alertRepo := repository.NewInMemoryAlertRepository()
	events := bus.NewLocal()
	t.Cleanup(events.Close)
	return NewAlertService(geofenceRepo, alertRepo, events, limit, testLogger()), geofenceRepo, alertRepo, events
}

func TestOverspeedAlert(t *testing.T) {
	svc, _, alertRepo, events := newAlertFixture(t, 120)

	ch, cancel := events.Subscribe(4)
	defer cancel()

	fix := model.NewFix("dev-1", "gt06", 40, 50)
	fix.Speed = 150
	svc.Evaluate(context.Background(), "veh-1", fix)

	alerts, _ := alertRepo.FindByVehicleID("veh-1")
	if len(alerts) != 1 || alerts[0].Kind != model.AlertOverspeed {
		t.Fatalf("alerts = %+v, want one overspeed alert", alerts)
	}

	select {
	case env := <-ch:
		if env.Event != bus.EventNewAlert {
			t.Errorf("Event = %q, want new_alert", env.Event)
		}
	default:
		t.Error("no new_alert event published")
	}
}

func TestNoOverspeedBelowLimit(t *testing.T) {
	svc, _, alertRepo, _ := newAlertFixture(t, 120)

	fix := model.NewFix("dev-1", "gt06", 40, 50)
	fix.Speed = 80
	svc.Evaluate(context.Background(), "veh-1", fix)

	alerts, _ := alertRepo.FindByVehicleID("veh-1")
	if len(alerts) != 0 {
		t.Errorf("alerts = %+v, want none", alerts)
	}
}

func TestGeofenceTransitions(t *testing.T) {
	svc, geofenceRepo, alertRepo, _ := newAlertFixture(t, 0)

	fence := model.NewGeofence("veh-1", "depot", 40.0, 50.0, 500)
	if err := geofenceRepo.Create(fence); err != nil {
		t.Fatal(err)
	}

	inside := model.NewFix("dev-1", "gt06", 40.0, 50.0)
	outside := model.NewFix("dev-1", "gt06", 41.0, 50.0) // ~111 km north

	// First fix seeds state, no alert.
	svc.Evaluate(context.Background(), "veh-1", inside)
	alerts, _ := alertRepo.FindByVehicleID("veh-1")
	if len(alerts) != 0 {
		t.Fatalf("alerts after seed = %+v, want none", alerts)
	}

	// Leaving fires an exit.
	svc.Evaluate(context.Background(), "veh-1", outside)
	alerts, _ = alertRepo.FindByVehicleID("veh-1")
	if len(alerts) != 1 || alerts[0].Kind != model.AlertGeofenceExit {
		t.Fatalf("alerts = %+v, want one geofenceExit", alerts)
	}

	// Staying outside is quiet.
	svc.Evaluate(context.Background(), "veh-1", outside)
	alerts, _ = alertRepo.FindByVehicleID("veh-1")
	if len(alerts) != 1 {
		t.Fatalf("alerts = %+v, want still one", alerts)
	}

	// Coming back fires an enter.
	svc.Evaluate(context.Background(), "veh-1", inside)
	alerts, _ = alertRepo.FindByVehicleID("veh-1")
	if len(alerts) != 2 || alerts[1].Kind != model.AlertGeofenceEnter {
		t.Fatalf("alerts = %+v, want geofenceEnter appended", alerts)
	}
}

func TestGeofenceContains(t *testing.T) {
	fence := model.NewGeofence("veh-1", "zone", 0, 0, 200)

	if !fence.Contains(0, 0) {
		t.Error("center must be contained")
	}
	if !fence.Contains(0.001, 0) { // ~111 m
		t.Error("point ~111m away must be inside a 200m fence")
	}
	if fence.Contains(0.01, 0) { // ~1.1 km
		t.Error("point ~1.1km away must be outside a 200m fence")
	}
}
