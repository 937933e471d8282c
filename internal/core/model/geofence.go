package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Geofence is a circular zone attached to a vehicle. Containment is evaluated
// against every persisted fix for that vehicle.
type Geofence struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicleId"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	RadiusM   float64   `json:"radiusM"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewGeofence(vehicleID, name string, lat, lon, radiusM float64) *Geofence {
	return &Geofence{
		ID:        uuid.NewString(),
		VehicleID: vehicleID,
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		RadiusM:   radiusM,
		CreatedAt: time.Now().UTC(),
	}
}

const earthRadiusM = 6371000

// Contains reports whether the point lies inside the fence, using a haversine
// great-circle distance.
func (g *Geofence) Contains(lat, lon float64) bool {
	return haversineM(g.Latitude, g.Longitude, lat, lon) <= g.RadiusM
}

func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
