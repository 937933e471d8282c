package repository

import (
	"sync"

	"fleettrack/internal/core/model"
)

type inMemoryGeofenceRepository struct {
	geofences []*model.Geofence
	mutex     sync.RWMutex
}

func NewInMemoryGeofenceRepository() GeofenceRepository {
	return &inMemoryGeofenceRepository{}
}

func (r *inMemoryGeofenceRepository) Create(geofence *model.Geofence) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.geofences = append(r.geofences, geofence)
	return nil
}

func (r *inMemoryGeofenceRepository) FindByVehicleID(vehicleID string) ([]*model.Geofence, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Geofence
	for _, g := range r.geofences {
		if g.VehicleID == vehicleID {
			result = append(result, g)
		}
	}
	return result, nil
}
