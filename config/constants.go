package config

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultModel is the Gemini model used for command translation
	DefaultModel = "gemini-2.5-flash"

	// DefaultBaseURL is the Gemini API endpoint
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultSnapshotDir is where versioned snapshots are written
	DefaultSnapshotDir = "backups"

	// DefaultRequestTimeoutSec bounds a single translation call end to end
	DefaultRequestTimeoutSec = 30

	// DefaultMaxRetries is the retry budget for the translation HTTP call
	DefaultMaxRetries = 2

	// DefaultBreakerMaxFailures is the consecutive-failure count that opens
	// the translator circuit
	DefaultBreakerMaxFailures = 5

	// DefaultBreakerTimeoutSec is how long the circuit stays open before a
	// half-open probe
	DefaultBreakerTimeoutSec = 30
)

// DefaultCommands are the verbs enabled out of the box. A config file can
// disable entries but removal-class verbs are always re-enabled on load so a
// stale config cannot strand the tree.
var DefaultCommands = []string{
	"cd", "mkdir", "ls", "dir", "touch", "type", "cat",
	"rm", "rmdir", "rename", "pwd", "log", "clear log",
	"index", "backup", "help",
}

// requiredCommands can never be disabled via config.
var requiredCommands = []string{"rm", "rmdir", "rename", "backup", "index"}
