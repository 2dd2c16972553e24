package poller

// Version information for the poller module.
const (
	// Version is the current version of the poller module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)
