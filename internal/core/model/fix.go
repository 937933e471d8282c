package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAccuracy is assumed for protocols that do not report one.
const DefaultAccuracy = 10

// Fix is one normalized location report, the common shape every protocol
// decoder produces. Speed is km/h, heading degrees, accuracy meters. The
// timestamp is assigned at ingestion; device-reported clocks drift too much
// to trust for ordering.
type Fix struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	VehicleID string    `json:"vehicleId,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Heading   float64   `json:"heading"`
	Accuracy  float64   `json:"accuracy"`
	Protocol  string    `json:"protocol"`
	Timestamp time.Time `json:"timestamp"`
}

func NewFix(deviceID, protocol string, lat, lon float64) *Fix {
	return &Fix{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		Latitude:  lat,
		Longitude: lon,
		Accuracy:  DefaultAccuracy,
		Protocol:  protocol,
		Timestamp: time.Now().UTC(),
	}
}

// ValidCoordinates reports whether lat/lon are inside the WGS84 bounds.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Valid reports whether the fix satisfies the pipeline's minimum contract:
// a device identity and in-bounds coordinates.
func (f *Fix) Valid() bool {
	return f.DeviceID != "" && ValidCoordinates(f.Latitude, f.Longitude)
}
