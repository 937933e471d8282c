package repository

import (
	"sync"

	"fleettrack/internal/core/model"
)

type inMemoryAlertRepository struct {
	alerts []*model.Alert
	mutex  sync.RWMutex
}

func NewInMemoryAlertRepository() AlertRepository {
	return &inMemoryAlertRepository{}
}

func (r *inMemoryAlertRepository) Create(alert *model.Alert) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *inMemoryAlertRepository) FindByVehicleID(vehicleID string) ([]*model.Alert, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Alert
	for _, a := range r.alerts {
		if a.VehicleID == vehicleID {
			result = append(result, a)
		}
	}
	return result, nil
}
