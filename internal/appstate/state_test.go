package appstate

import (
	"testing"
	"time"

	"github.com/twintray/twintray/internal/models"
)

func sampleNetwork() *models.Network {
	return &models.Network{
		User: models.User{ID: "u-1", Email: "dev@example.com"},
		Resources: []models.Resource{
			{ID: "r-1", Name: "intranet", Address: "intranet.internal", ClientVisibility: 1},
		},
	}
}

func TestNewStartsNotRunning(t *testing.T) {
	s := New()
	if got := s.Status(); got.Kind != StatusNotRunning {
		t.Errorf("Status().Kind = %v, want StatusNotRunning", got.Kind)
	}
	if s.Network() != nil {
		t.Error("fresh state should have no snapshot")
	}
	if !s.ShouldRefresh(time.Minute) {
		t.Error("fresh state should want a refresh")
	}
}

func TestUpdateNetworkTransitions(t *testing.T) {
	s := New()

	s.UpdateNetwork(sampleNetwork())
	if got := s.Status(); got.Kind != StatusConnected {
		t.Fatalf("after snapshot: Kind = %v, want StatusConnected", got.Kind)
	}
	if s.Network() == nil {
		t.Fatal("snapshot should be cached")
	}
	if s.ShouldRefresh(time.Minute) {
		t.Error("freshly updated state should not want a refresh")
	}

	s.UpdateNetwork(nil)
	if got := s.Status(); got.Kind != StatusNotRunning {
		t.Errorf("after nil snapshot: Kind = %v, want StatusNotRunning", got.Kind)
	}
	if s.Network() != nil {
		t.Error("nil update should clear the snapshot")
	}
}

func TestSetAuthenticatingDropsSnapshot(t *testing.T) {
	s := New()
	s.UpdateNetwork(sampleNetwork())

	s.SetAuthenticating("https://auth.example.com/device")

	status := s.Status()
	if status.Kind != StatusAuthenticating {
		t.Fatalf("Kind = %v, want StatusAuthenticating", status.Kind)
	}
	if status.AuthURL != "https://auth.example.com/device" {
		t.Errorf("AuthURL = %q", status.AuthURL)
	}
	// The stale session's resources must not survive into the auth view.
	if s.Network() != nil {
		t.Error("entering authentication should drop the snapshot")
	}

	url, ok := s.AuthURL()
	if !ok || url != "https://auth.example.com/device" {
		t.Errorf("AuthURL() = %q, %v", url, ok)
	}
}

func TestUpdateNetworkClearsAuthenticating(t *testing.T) {
	s := New()
	s.SetAuthenticating("https://auth.example.com/device")

	s.UpdateNetwork(sampleNetwork())
	if got := s.Status(); got.Kind != StatusConnected {
		t.Errorf("Kind = %v, want StatusConnected", got.Kind)
	}
	if _, ok := s.AuthURL(); ok {
		t.Error("auth URL should be gone once connected")
	}

	s.SetAuthenticating("https://auth.example.com/retry")
	s.UpdateNetwork(nil)
	if _, ok := s.AuthURL(); ok {
		t.Error("auth URL should be gone once not running")
	}
}

func TestSetRefreshingGuardsReentry(t *testing.T) {
	s := New()
	if !s.SetRefreshing(true) {
		t.Fatal("first SetRefreshing(true) should win")
	}
	if s.SetRefreshing(true) {
		t.Error("second SetRefreshing(true) should lose while a refresh is in flight")
	}
	if !s.SetRefreshing(false) {
		t.Error("clearing the flag should always succeed")
	}
	if !s.SetRefreshing(true) {
		t.Error("SetRefreshing(true) should win again after the flag clears")
	}
}
