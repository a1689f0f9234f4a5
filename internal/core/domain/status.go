package domain

// RemoteState describes the remote store's connectivity.
type RemoteState string

// Remote store states reported by status checks.
const (
	RemoteConnected     RemoteState = "connected"
	RemoteNotConfigured RemoteState = "not configured"
	RemoteAuthFailed    RemoteState = "authentication failed"
	RemoteUnreachable   RemoteState = "unreachable"
)

// Status is a point-in-time readiness report.
type Status struct {
	// Remote is the Drive connectivity state.
	Remote RemoteState

	// LocalDir is the searched local directory, "" when disabled.
	LocalDir string

	// AIEnabled is true when an LLM service is configured.
	AIEnabled bool

	// Model is the LLM model name when AIEnabled.
	Model string

	// Users is the number of registered users.
	Users int
}
