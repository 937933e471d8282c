package repository

import (
	"sync"

	"fleettrack/internal/core/model"
)

type inMemoryFixRepository struct {
	fixes []*model.Fix
	mutex sync.RWMutex
}

func NewInMemoryFixRepository() FixRepository {
	return &inMemoryFixRepository{}
}

func (r *inMemoryFixRepository) Create(fix *model.Fix) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.fixes = append(r.fixes, fix)
	return nil
}

func (r *inMemoryFixRepository) FindByVehicleID(vehicleID string) ([]*model.Fix, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Fix
	for _, fix := range r.fixes {
		if fix.VehicleID == vehicleID {
			result = append(result, fix)
		}
	}
	return result, nil
}

func (r *inMemoryFixRepository) FindLatestByDeviceID(deviceID string) (*model.Fix, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var latest *model.Fix
	for _, fix := range r.fixes {
		if fix.DeviceID != deviceID {
			continue
		}
		if latest == nil || fix.Timestamp.After(latest.Timestamp) {
			latest = fix
		}
	}
	return latest, nil
}
