// Package tray implements the system tray icon and contextual menu.
package tray

import (
	"github.com/twintray/twintray/internal/appstate"
	"github.com/twintray/twintray/internal/models"
)

// Controller provides the tray's view of application state and the
// actions behind menu clicks. Implementations must be non-blocking:
// clicks arrive on the systray event loop and long work belongs in a
// goroutine.
type Controller interface {
	Status() appstate.ServiceStatus
	CachedNetwork() *models.Network

	StartService()
	StopService()
	CopyAddress(resourceID string)
	OpenResource(resourceID string)
	AuthenticateResource(resourceID string)
	OpenAuthURL()
	CopyAuthURL()
	Quit()
}
