package memfsh

import "context"

// Translator maps unconstrained user text to the closed command grammar.
// Implementations must be side-effect free: nothing may mutate the tree
// until the returned command has been validated by the dispatcher.
type Translator interface {
	// Translate returns the parsed command for text, or an error when the
	// text cannot be mapped to any known verb or the backend is unreachable.
	Translate(ctx context.Context, text string) (*ParsedCommand, error)

	// Name identifies the translator for logging and error messages.
	Name() string
}
