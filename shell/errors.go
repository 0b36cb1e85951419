package shell

import "errors"

var (
	// ErrUnknownCommand means the input matched no verb and, when a
	// translator is configured, the translator could not map it either.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrCommandDisabled means the verb exists but is switched off in the
	// configuration.
	ErrCommandDisabled = errors.New("command disabled")
)
