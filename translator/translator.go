// Package translator maps free-form user text onto the shell's closed
// command grammar. The Gemini-backed implementation performs exactly one
// outbound API call per input; the rule-based implementation is
// deterministic and credential-free. Neither touches the filesystem.
package translator

import "errors"

var (
	// ErrMissingCredential means the Gemini API key is absent or empty.
	// This is a configuration error, distinct from filesystem errors.
	ErrMissingCredential = errors.New("missing GEMINI_API_KEY credential")

	// ErrUpstream wraps transport or API failures of the translation call.
	ErrUpstream = errors.New("translation service unavailable")

	// ErrUntranslatable means the text could not be mapped to a known verb.
	// Callers must treat it exactly like an unknown command.
	ErrUntranslatable = errors.New("could not map text to a known command")
)
