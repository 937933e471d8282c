package bus

import (
	"encoding/json"
	"testing"

	"fleettrack/internal/core/model"
)

func TestLocalFanOut(t *testing.T) {
	b := NewLocal()
	defer b.Close()

	ch, cancel := b.Subscribe(4)
	defer cancel()

	fix := model.NewFix("dev-1", "gt06", 40.0, 50.0)
	if err := b.PublishGPSUpdate("veh-1", fix); err != nil {
		t.Fatalf("PublishGPSUpdate() error = %v", err)
	}

	env := <-ch
	if env.Event != EventGPSUpdate {
		t.Errorf("Event = %q, want %q", env.Event, EventGPSUpdate)
	}

	var update GPSUpdate
	if err := json.Unmarshal(env.Data, &update); err != nil {
		t.Fatalf("unmarshal envelope data: %v", err)
	}
	if update.VehicleID != "veh-1" || update.Location.DeviceID != "dev-1" {
		t.Errorf("payload = %+v, want veh-1/dev-1", update)
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewLocal()
	defer b.Close()

	_, cancel := b.Subscribe(0) // never drained, zero buffer
	defer cancel()

	fix := model.NewFix("dev-1", "nmea", 1, 2)
	// Must return immediately even though the subscriber cannot accept.
	if err := b.PublishGPSUpdate("veh-1", fix); err != nil {
		t.Fatalf("PublishGPSUpdate() error = %v", err)
	}
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	b := NewLocal()
	defer b.Close()

	ch, cancel := b.Subscribe(1)
	cancel()

	alert := model.NewAlert("veh-1", "dev-1", model.AlertOverspeed, "too fast", 1, 2)
	if err := b.PublishAlert(alert); err != nil {
		t.Fatalf("PublishAlert() error = %v", err)
	}

	if _, ok := <-ch; ok {
		t.Error("cancelled subscriber received an event")
	}
}
