// Package session tracks live device TCP connections. The registry is the
// single source of truth for "is device X currently connected" and the only
// core-owned shared mutable structure; all mutation goes through its lock.
package session

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

type State int

const (
	Unidentified State = iota
	Identified
	Closed
)

// Session is the bookkeeping record for one TCP client. DeviceID stays empty
// until the first successful decode identifies the connection.
type Session struct {
	ID         string
	DeviceID   string
	RemoteAddr string
	LastSeen   time.Time
	Conn       net.Conn

	state State
}

// Info is the read-only view exposed by the connected-devices endpoint.
type Info struct {
	DeviceID   string    `json:"device_id"`
	RemoteAddr string    `json:"remote_address"`
	LastSeen   time.Time `json:"last_seen"`
	Connected  bool      `json:"connected"`
}

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session // session id -> session
	byDevice map[string]*Session // device id -> session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		byDevice: make(map[string]*Session),
	}
}

// Open registers a fresh unidentified session for an accepted connection.
func (r *Registry) Open(conn net.Conn) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		LastSeen: time.Now().UTC(),
		Conn:     conn,
		state:    Unidentified,
	}
	if conn != nil {
		s.RemoteAddr = conn.RemoteAddr().String()
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Identify binds a device id to the session and indexes it. Last writer wins:
// a stale session holding the same device id loses its index entry, which is
// the intended behavior when a device reconnects (and the only sane one when
// two misconfigured devices share an id). Refreshes LastSeen.
func (r *Registry) Identify(s *Session, deviceID string) {
	if deviceID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s.state == Closed {
		return
	}
	s.DeviceID = deviceID
	s.state = Identified
	s.LastSeen = time.Now().UTC()
	r.byDevice[deviceID] = s
}

// Close removes the session from both indexes. A closed session is never
// reused. The device index entry is only removed if this session still owns
// it; a newer session for the same device keeps its slot.
func (r *Registry) Close(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.state == Closed {
		return
	}
	s.state = Closed
	delete(r.sessions, s.ID)
	if s.DeviceID != "" && r.byDevice[s.DeviceID] == s {
		delete(r.byDevice, s.DeviceID)
	}
}

// Lookup returns the live session for a device id, if any.
func (r *Registry) Lookup(deviceID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byDevice[deviceID]
	return s, ok
}

// Snapshot lists the currently identified sessions.
func (r *Registry) Snapshot() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.byDevice))
	for _, s := range r.byDevice {
		infos = append(infos, Info{
			DeviceID:   s.DeviceID,
			RemoteAddr: s.RemoteAddr,
			LastSeen:   s.LastSeen,
			Connected:  true,
		})
	}
	return infos
}

// Count returns the number of identified sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byDevice)
}
