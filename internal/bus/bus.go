// Package bus publishes ingestion events to live subscribers. Events go out
// on two surfaces: NATS JetStream subjects for other services, and an
// in-process fan-out feeding the websocket hub. The pipeline treats every
// publish as fire-and-forget; a bus outage never reaches the device.
package bus

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"fleettrack/internal/core/model"
)

const (
	SubjectGPSUpdate = "fleet.gps_update"
	SubjectNewAlert  = "fleet.new_alert"

	EventGPSUpdate = "gps_update"
	EventNewAlert  = "new_alert"
)

// Envelope is the wire form of one event, identical on NATS and on the
// websocket feed.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// GPSUpdate is the payload published for every persisted fix.
type GPSUpdate struct {
	VehicleID string     `json:"vehicle_id"`
	Location  *model.Fix `json:"location"`
}

type Bus struct {
	nc *nats.Conn
	js nats.JetStreamContext

	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Envelope
}

// Connect builds a NATS-backed bus. The stream is created on first use so a
// fresh broker works out of the box.
func Connect(url string) (*Bus, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     "FLEET",
		Subjects: []string{SubjectGPSUpdate, SubjectNewAlert},
		Storage:  nats.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Bus{nc: nc, js: js, subs: make(map[int]chan Envelope)}, nil
}

// NewLocal builds a bus with only the in-process fan-out. Used in tests and
// when no NATS URL is configured.
func NewLocal() *Bus {
	return &Bus{subs: make(map[int]chan Envelope)}
}

// PublishGPSUpdate emits a gps_update event for a persisted fix.
func (b *Bus) PublishGPSUpdate(vehicleID string, fix *model.Fix) error {
	data, err := json.Marshal(GPSUpdate{VehicleID: vehicleID, Location: fix})
	if err != nil {
		return fmt.Errorf("failed to marshal gps update: %w", err)
	}
	return b.publish(SubjectGPSUpdate, EventGPSUpdate, data)
}

// PublishAlert emits a new_alert event.
func (b *Bus) PublishAlert(alert *model.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	return b.publish(SubjectNewAlert, EventNewAlert, data)
}

func (b *Bus) publish(subject, event string, data []byte) error {
	env := Envelope{Event: event, Data: data}

	b.mu.RLock()
	for _, ch := range b.subs {
		// Non-blocking: a stalled subscriber drops events rather than
		// stalling the pipeline.
		select {
		case ch <- env:
		default:
		}
	}
	b.mu.RUnlock()

	if b.js == nil {
		return nil
	}
	if _, err := b.js.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}
	return nil
}

// Subscribe registers an in-process subscriber. The returned cancel func must
// be called to release the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Envelope, func()) {
	ch := make(chan Envelope, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Bus) Close() {
	b.mu.Lock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()

	if b.nc != nil {
		b.nc.Close()
	}
}
