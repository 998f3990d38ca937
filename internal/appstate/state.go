// Package appstate holds the single shared record of what the client
// currently believes about the daemon. It is constructed once at startup
// and handed to every component that needs it; there is no package-level
// instance.
package appstate

import (
	"sync"
	"time"

	"github.com/twintray/twintray/internal/models"
)

// StatusKind discriminates the service status.
type StatusKind int

const (
	// StatusNotRunning means the daemon is stopped or unreachable.
	StatusNotRunning StatusKind = iota
	// StatusConnected means a network snapshot is cached.
	StatusConnected
	// StatusAuthenticating means an authentication flow is in progress
	// and AuthURL carries the URL the user must visit.
	StatusAuthenticating
)

// ServiceStatus is the tray-facing status: not running, connected, or
// authenticating with a pending URL.
type ServiceStatus struct {
	Kind    StatusKind
	AuthURL string
}

// State is the process-wide mutable application state, guarded by a
// mutex. The lock is never held across a blocking call; reads are
// advisory snapshots and can be stale by the time a caller acts on them.
type State struct {
	mu         sync.Mutex
	network    *models.Network
	status     ServiceStatus
	lastUpdate time.Time
	refreshing bool
}

// New returns a state in the not-running status with no snapshot.
func New() *State {
	return &State{status: ServiceStatus{Kind: StatusNotRunning}}
}

// UpdateNetwork replaces the cached snapshot wholesale. A nil network
// transitions to not-running; non-nil to connected. Either way any
// authenticating marker is cleared and the update timestamp is bumped.
func (s *State) UpdateNetwork(network *models.Network) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network = network
	if network != nil {
		s.status = ServiceStatus{Kind: StatusConnected}
	} else {
		s.status = ServiceStatus{Kind: StatusNotRunning}
	}
	s.lastUpdate = time.Now()
}

// SetAuthenticating marks an authentication flow in progress. The stale
// snapshot is dropped atomically with the transition so the menu cannot
// render resources from a session that is being replaced.
func (s *State) SetAuthenticating(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network = nil
	s.status = ServiceStatus{Kind: StatusAuthenticating, AuthURL: url}
}

// Status returns the current service status.
func (s *State) Status() ServiceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Network returns the cached snapshot, or nil.
func (s *State) Network() *models.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network
}

// AuthURL returns the pending authentication URL, if any.
func (s *State) AuthURL() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Kind != StatusAuthenticating {
		return "", false
	}
	return s.status.AuthURL, true
}

// ShouldRefresh reports whether the snapshot is older than threshold (or
// was never fetched).
func (s *State) ShouldRefresh(threshold time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUpdate.IsZero() {
		return true
	}
	return time.Since(s.lastUpdate) > threshold
}

// SetRefreshing marks a refresh in flight and reports whether the caller
// won the race to start one.
func (s *State) SetRefreshing(v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v && s.refreshing {
		return false
	}
	s.refreshing = v
	return true
}
