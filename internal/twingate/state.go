package twingate

import "strings"

// ServiceState is the discrete state derived from the daemon's status
// output. It is recomputed on every poll and never persisted.
type ServiceState int

const (
	// StateNotRunning means the daemon is stopped.
	StateNotRunning ServiceState = iota
	// StateStarting means the daemon is booting.
	StateStarting
	// StateConnecting means the daemon is up but the tunnel is not
	// established yet. Unrecognized status text also maps here so that
	// callers retry instead of failing on an unknown message.
	StateConnecting
	// StateConnected means the tunnel is established.
	StateConnected
	// StateAuthRequired means the daemon is waiting for user
	// authentication.
	StateAuthRequired
)

func (s ServiceState) String() string {
	switch s {
	case StateNotRunning:
		return "not-running"
	case StateStarting:
		return "starting"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAuthRequired:
		return "auth-required"
	default:
		return "unknown"
	}
}

// Transitional reports whether the state is expected to resolve shortly
// and therefore warrants a retry rather than a failure.
func (s ServiceState) Transitional() bool {
	return s == StateStarting || s == StateConnecting
}

// Keyword families checked by Classify, in priority order. The daemon's
// status text is an undocumented format and can contain several families
// at once ("connected but authentication is required"), so ordering is
// load-bearing: auth-required dominates everything, not-running beats the
// transitional families, and connected is only reported when nothing
// else matched.
var (
	authRequiredPhrases = []string{
		"authentication is required",
		"auth required",
		"not authenticated",
		"user authentication is required",
		"reauthenticate",
		"re-authenticate",
	}
	authStems       = []string{"auth"}
	authQualifiers  = []string{"required", "needed", "expired"}
	notRunningWords = []string{"not-running", "not running", "offline", "stopped", "inactive", "dead"}
	startingWords   = []string{"starting", "initializing", "initialising", "booting", "loading", "launching"}
	connectingWords = []string{"connecting", "authenticating", "handshake", "establishing", "negotiating"}
	connectedWords  = []string{"online", "connected", "ready", "active", "established"}
)

// Classify maps raw daemon status text to a ServiceState. Pure function,
// case-insensitive, whitespace-trimmed.
func Classify(statusText string) ServiceState {
	text := strings.ToLower(strings.TrimSpace(statusText))

	if containsAny(text, authRequiredPhrases) || (containsAny(text, authStems) && containsAny(text, authQualifiers)) {
		return StateAuthRequired
	}
	if containsAny(text, notRunningWords) {
		return StateNotRunning
	}
	if containsAny(text, startingWords) {
		return StateStarting
	}
	if containsAny(text, connectingWords) {
		return StateConnecting
	}
	if containsAny(text, connectedWords) {
		return StateConnected
	}

	// Unknown output is treated as transitional, not as an error.
	return StateConnecting
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
