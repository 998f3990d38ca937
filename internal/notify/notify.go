// Package notify sends desktop notifications for service state changes.
package notify

import (
	"log"

	"github.com/gen2brain/beeep"
)

const appTitle = "Twingate"

// Notifier sends desktop notifications. A disabled notifier silently
// drops everything, so callers never need to check the setting.
type Notifier struct {
	enabled bool
}

// New returns a notifier; pass the user's notifications setting.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

// AuthRequired tells the user the daemon is waiting on authentication.
func (n *Notifier) AuthRequired() {
	n.send("Authentication required", "Twingate needs you to sign in. Check the tray menu.")
}

// Connected announces a fresh connection.
func (n *Notifier) Connected(email string) {
	n.send("Connected", "Signed in as "+email)
}

// Disconnected announces the service went away.
func (n *Notifier) Disconnected() {
	n.send("Disconnected", "The Twingate service is not running.")
}

func (n *Notifier) send(title, message string) {
	if !n.enabled {
		return
	}
	if err := beeep.Notify(appTitle+": "+title, message, ""); err != nil {
		// Notifications are best-effort; a missing notification daemon is
		// not worth surfacing.
		log.Printf("[notify] %v", err)
	}
}
