package model

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is the dashboard-owned entity a device maps to. The ingestion core
// only ever tags fixes and events with its id.
type Vehicle struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plate     string    `json:"plate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewVehicle(name, plate string) *Vehicle {
	return &Vehicle{
		ID:        uuid.NewString(),
		Name:      name,
		Plate:     plate,
		CreatedAt: time.Now().UTC(),
	}
}
