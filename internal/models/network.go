package models

import (
	"fmt"
	"time"
)

// Network is the structured snapshot produced by the notifier's resources
// command. It is replaced wholesale on every successful fetch and never
// mutated in place.
type Network struct {
	AdminURL            string           `json:"admin_url"`
	FullTunnelTimeLimit uint64           `json:"full_tunnel_time_limit"`
	InternetSecurity    InternetSecurity `json:"internet_security"`
	Resources           []Resource       `json:"resources"`
	User                User             `json:"user"`
}

// InternetSecurity describes the tunnel's internet security mode.
type InternetSecurity struct {
	Mode   int `json:"mode"`
	Status int `json:"status"`
}

// Resource is a single protected resource. AuthExpiresAt is the
// remaining authentication lifetime in milliseconds; zero means the
// resource has never been authenticated and requires authentication
// before use.
type Resource struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	AdminURL         string  `json:"admin_url"`
	Alias            *string `json:"alias"`
	Aliases          []Alias `json:"aliases"`
	AuthExpiresAt    int64   `json:"auth_expires_at"`
	AuthFlowID       string  `json:"auth_flow_id"`
	AuthState        string  `json:"auth_state"`
	CanOpenInBrowser bool    `json:"can_open_in_browser"`
	ClientVisibility int     `json:"client_visibility"`
	OpenURL          string  `json:"open_url"`
	Type             string  `json:"type"`
}

// Alias is an alternate address for a resource.
type Alias struct {
	Address string `json:"address"`
	OpenURL string `json:"open_url"`
}

// User is the authenticated Twingate user.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url"`
	IsAdmin   bool   `json:"is_admin"`
}

// DisplayAddress returns the alias when one is set and non-empty,
// otherwise the resource address.
func (r *Resource) DisplayAddress() string {
	if r.Alias != nil && *r.Alias != "" {
		return *r.Alias
	}
	return r.Address
}

// BrowserURL returns the URL to open the resource in a browser, or empty
// when the resource cannot be opened in one.
func (r *Resource) BrowserURL() string {
	if !r.CanOpenInBrowser {
		return ""
	}
	for _, a := range r.Aliases {
		if a.OpenURL != "" {
			return a.OpenURL
		}
	}
	return ""
}

// NeedsAuth reports whether the resource requires authentication.
// An AuthExpiresAt of zero is the sentinel for "never authenticated".
func (r *Resource) NeedsAuth() bool {
	return r.AuthExpiresAt == 0
}

// AuthExpiresIn returns the remaining authentication lifetime.
func (r *Resource) AuthExpiresIn() time.Duration {
	return time.Duration(r.AuthExpiresAt) * time.Millisecond
}

// VisibleResources returns the resources that should appear in the tray
// menu (client_visibility of zero hides a resource).
func (n *Network) VisibleResources() []Resource {
	var visible []Resource
	for _, r := range n.Resources {
		if r.ClientVisibility != 0 {
			visible = append(visible, r)
		}
	}
	return visible
}

// Validate checks the fields the client cannot do without. Everything
// else defaults when absent.
func (n *Network) Validate() error {
	if n.User.Email == "" {
		return fmt.Errorf("network snapshot missing user email")
	}
	for i, r := range n.Resources {
		if r.ID == "" || r.Name == "" {
			return fmt.Errorf("resource %d missing id or name", i)
		}
	}
	return nil
}

// FindResource looks up a resource by ID.
func (n *Network) FindResource(id string) (*Resource, bool) {
	for i := range n.Resources {
		if n.Resources[i].ID == id {
			return &n.Resources[i], true
		}
	}
	return nil, false
}
