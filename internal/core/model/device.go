package model

import (
	"time"

	"github.com/google/uuid"
)

// Device statuses kept in the directory.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Device is one row of the vehicle/device directory. The ingestion core reads
// a row by UniqueID and flips Status/LastConnection on every persisted fix;
// everything else on the row belongs to the dashboard.
type Device struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	UniqueID       string    `json:"uniqueId"` // serial, IMEI or embedded device id
	VehicleID      string    `json:"vehicleId"`
	Status         string    `json:"status"`
	LastConnection time.Time `json:"lastConnection"`
	CreatedAt      time.Time `json:"createdAt"`
}

func NewDevice(name, uniqueID, vehicleID string) *Device {
	return &Device{
		ID:        uuid.NewString(),
		Name:      name,
		UniqueID:  uniqueID,
		VehicleID: vehicleID,
		Status:    StatusInactive,
		CreatedAt: time.Now().UTC(),
	}
}
