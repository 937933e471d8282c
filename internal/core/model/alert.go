package model

import (
	"time"

	"github.com/google/uuid"
)

// Alert kinds produced by the evaluation pass after each persisted fix.
const (
	AlertOverspeed     = "overspeed"
	AlertGeofenceEnter = "geofenceEnter"
	AlertGeofenceExit  = "geofenceExit"
)

// Alert is one triggered alert, persisted and published as a new_alert event.
type Alert struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicleId"`
	DeviceID  string    `json:"deviceId"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewAlert(vehicleID, deviceID, kind, message string, lat, lon float64) *Alert {
	return &Alert{
		ID:        uuid.NewString(),
		VehicleID: vehicleID,
		DeviceID:  deviceID,
		Kind:      kind,
		Message:   message,
		Latitude:  lat,
		Longitude: lon,
		CreatedAt: time.Now().UTC(),
	}
}
