package repository

import (
	"fmt"
	"sync"
	"time"

	"fleettrack/internal/core/model"
)

type inMemoryDeviceRepository struct {
	devices map[string]*model.Device // keyed by UniqueID
	mutex   sync.RWMutex
}

// NewInMemoryDeviceRepository backs the directory with a map, for tests and
// for running without MongoDB.
func NewInMemoryDeviceRepository() DeviceRepository {
	return &inMemoryDeviceRepository{
		devices: make(map[string]*model.Device),
	}
}

func (r *inMemoryDeviceRepository) Create(device *model.Device) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.devices[device.UniqueID]; exists {
		return fmt.Errorf("device with unique ID %s already exists", device.UniqueID)
	}
	r.devices[device.UniqueID] = device
	return nil
}

func (r *inMemoryDeviceRepository) FindByUniqueID(uniqueID string) (*model.Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if device, exists := r.devices[uniqueID]; exists {
		return device, nil
	}
	return nil, nil
}

func (r *inMemoryDeviceRepository) MarkActive(uniqueID string, at time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	device, exists := r.devices[uniqueID]
	if !exists {
		return fmt.Errorf("device with unique ID %s not found", uniqueID)
	}
	device.Status = model.StatusActive
	device.LastConnection = at
	return nil
}
