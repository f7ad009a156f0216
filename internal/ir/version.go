package ir

// Version constants for the snapshot format and tool.
const (
	// SnapshotVersion is the snapshot encoding version.
	SnapshotVersion = "1"

	// ToolVersion is the recsnap release version.
	ToolVersion = "0.1.0"
)
