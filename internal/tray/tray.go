package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/twintray/twintray/internal/appstate"
	"github.com/twintray/twintray/internal/models"
)

// maxResourceSlots bounds the number of resources shown in the menu.
// systray cannot remove items once added, so slots are pre-allocated and
// shown or hidden on each rebuild.
const maxResourceSlots = 20

var (
	ctrl    Controller
	onStart func()
	onExit  func()

	// Connected section
	userItem     *systray.MenuItem
	securityItem *systray.MenuItem
	stopItem     *systray.MenuItem

	// Authenticating section
	authStatusItem *systray.MenuItem
	openAuthItem   *systray.MenuItem
	copyAuthItem   *systray.MenuItem

	// Disconnected section
	startItem *systray.MenuItem

	// Resources section
	resourceCountItem *systray.MenuItem
	resourceSlots     [maxResourceSlots]*resourceSlot

	quitItem *systray.MenuItem

	// Maps slot index → resource ID for click actions
	slotMu        sync.RWMutex
	slotResources [maxResourceSlots]string
)

// resourceSlot is one pre-allocated per-resource submenu.
type resourceSlot struct {
	root         *systray.MenuItem
	address      *systray.MenuItem
	copyAddress  *systray.MenuItem
	openBrowser  *systray.MenuItem
	authLabel    *systray.MenuItem
	authenticate *systray.MenuItem
}

// Run starts the system tray. This blocks the calling goroutine (must be
// main). onStartFn is called once the menu exists (launch background
// refresh there); onExitFn is called when the tray exits.
func Run(c Controller, onStartFn, onExitFn func()) {
	ctrl = c
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

// Refresh re-renders the whole menu from the controller's current state.
// The menu is swapped wholesale (show/hide of pre-built items), never
// partially mutated, so a rebuild can never race a half-rendered menu.
func Refresh() {
	if ctrl == nil {
		return
	}

	status := ctrl.Status()
	switch status.Kind {
	case appstate.StatusAuthenticating:
		showAuthenticatingMenu()
	case appstate.StatusConnected:
		if network := ctrl.CachedNetwork(); network != nil {
			showConnectedMenu(network)
		} else {
			showDisconnectedMenu()
		}
	default:
		showDisconnectedMenu()
	}
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTooltip("Twingate")

	// All items are created up front in display order; sections are
	// toggled by show/hide.
	userItem = systray.AddMenuItem("", "Signed-in Twingate user")
	userItem.Disable()
	securityItem = systray.AddMenuItem("Security Enabled", "")
	securityItem.Disable()
	stopItem = systray.AddMenuItem("Log Out and Disconnect", "Stop the Twingate service")

	authStatusItem = systray.AddMenuItem("Authenticating...", "")
	authStatusItem.Disable()
	openAuthItem = systray.AddMenuItem("Open Authentication URL", "Open the sign-in page again")
	copyAuthItem = systray.AddMenuItem("Copy Authentication URL", "Copy the sign-in URL")

	startItem = systray.AddMenuItem("Start Twingate", "Start the Twingate service")

	systray.AddSeparator()

	resourceCountItem = systray.AddMenuItem("", "")
	resourceCountItem.Disable()

	for i := 0; i < maxResourceSlots; i++ {
		root := systray.AddMenuItem("", "")
		slot := &resourceSlot{
			root:         root,
			address:      root.AddSubMenuItem("", ""),
			copyAddress:  root.AddSubMenuItem("Copy Address", ""),
			openBrowser:  root.AddSubMenuItem("Open in Browser...", ""),
			authLabel:    root.AddSubMenuItem("", ""),
			authenticate: root.AddSubMenuItem("Authenticate...", ""),
		}
		slot.address.Disable()
		slot.authLabel.Disable()
		root.Hide()
		resourceSlots[i] = slot
	}

	systray.AddSeparator()

	quitItem = systray.AddMenuItem("Close Tray", "Quit the tray (service keeps running)")

	Refresh()

	if onStart != nil {
		onStart()
	}

	go handleClicks()
	for i := 0; i < maxResourceSlots; i++ {
		go handleSlotClicks(i, resourceSlots[i])
	}
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-startItem.ClickedCh:
			ctrl.StartService()
		case <-stopItem.ClickedCh:
			ctrl.StopService()
		case <-openAuthItem.ClickedCh:
			ctrl.OpenAuthURL()
		case <-copyAuthItem.ClickedCh:
			ctrl.CopyAuthURL()
		case <-quitItem.ClickedCh:
			ctrl.Quit()
		}
	}
}

func handleSlotClicks(slot int, s *resourceSlot) {
	for {
		select {
		case <-s.copyAddress.ClickedCh:
			ctrl.CopyAddress(slotResource(slot))
		case <-s.openBrowser.ClickedCh:
			ctrl.OpenResource(slotResource(slot))
		case <-s.authenticate.ClickedCh:
			ctrl.AuthenticateResource(slotResource(slot))
		}
	}
}

func slotResource(slot int) string {
	slotMu.RLock()
	defer slotMu.RUnlock()
	return slotResources[slot]
}

func showConnectedMenu(network *models.Network) {
	userItem.SetTitle(network.User.Email)
	userItem.Show()
	if network.InternetSecurity.Mode > 0 {
		securityItem.Show()
	} else {
		securityItem.Hide()
	}
	stopItem.Show()

	authStatusItem.Hide()
	openAuthItem.Hide()
	copyAuthItem.Hide()
	startItem.Hide()

	visible := network.VisibleResources()
	resourceCountItem.SetTitle(fmt.Sprintf("%d Resources", len(visible)))
	resourceCountItem.Show()
	updateResourceSlots(visible)

	systray.SetTooltip(fmt.Sprintf("Twingate — %s, %d resources", network.User.Email, len(visible)))
}

func showDisconnectedMenu() {
	userItem.Hide()
	securityItem.Hide()
	stopItem.Hide()
	authStatusItem.Hide()
	openAuthItem.Hide()
	copyAuthItem.Hide()
	resourceCountItem.Hide()
	hideAllSlots()

	startItem.Show()
	systray.SetTooltip("Twingate — not running")
}

func showAuthenticatingMenu() {
	userItem.Hide()
	securityItem.Hide()
	stopItem.Hide()
	startItem.Hide()
	resourceCountItem.Hide()
	hideAllSlots()

	authStatusItem.Show()
	openAuthItem.Show()
	copyAuthItem.Show()
	systray.SetTooltip("Twingate — authenticating")
}

func hideAllSlots() {
	slotMu.Lock()
	for i := range slotResources {
		slotResources[i] = ""
	}
	slotMu.Unlock()
	for _, slot := range resourceSlots {
		slot.root.Hide()
	}
}

func updateResourceSlots(resources []models.Resource) {
	slotMu.Lock()
	for i := range slotResources {
		slotResources[i] = ""
	}
	for i := range resources {
		if i >= maxResourceSlots {
			break
		}
		slotResources[i] = resources[i].ID
	}
	slotMu.Unlock()

	for i, slot := range resourceSlots {
		if i >= len(resources) {
			slot.root.Hide()
			continue
		}
		r := &resources[i]
		slot.root.SetTitle(r.Name)
		slot.address.SetTitle(r.DisplayAddress())

		if r.BrowserURL() != "" {
			slot.openBrowser.Show()
		} else {
			slot.openBrowser.Hide()
		}

		if r.NeedsAuth() {
			slot.authLabel.SetTitle("Authentication Required")
			slot.authLabel.Show()
			slot.authenticate.Show()
		} else {
			days := int(r.AuthExpiresIn().Hours() / 24)
			slot.authLabel.SetTitle(fmt.Sprintf("Auth expires in %d days", days))
			slot.authLabel.Show()
			slot.authenticate.Hide()
		}

		slot.root.Show()
	}
}
