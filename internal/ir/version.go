package ir

// Version constants for persisted data and the binary.
const (
	// SchemaVersion is the version of the exported save format.
	SchemaVersion = "1"

	// Version is the elemental release version.
	Version = "0.1.0"
)
