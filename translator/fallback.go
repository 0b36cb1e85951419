package translator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/memfsh/memfsh"
	"github.com/memfsh/memfsh/internal/util"
)

// Fallback tries the primary translator and, when it fails with an upstream
// error, retries the same text against the fallback. Untranslatable input
// is returned as-is: if the model understood the text but could not map it,
// a keyword pass will not do better.
type Fallback struct {
	primary  memfsh.Translator
	fallback memfsh.Translator
	logger   zerolog.Logger
}

// NewFallback chains primary with fallback.
func NewFallback(primary, fallback memfsh.Translator) *Fallback {
	return &Fallback{
		primary:  primary,
		fallback: fallback,
		logger:   util.GetLogger("translator.fallback"),
	}
}

// Name implements [memfsh.Translator].
func (f *Fallback) Name() string { return f.primary.Name() + "+" + f.fallback.Name() }

// Translate implements [memfsh.Translator].
func (f *Fallback) Translate(ctx context.Context, text string) (*memfsh.ParsedCommand, error) {
	cmd, err := f.primary.Translate(ctx, text)
	if err == nil {
		return cmd, nil
	}
	if errors.Is(err, ErrUntranslatable) {
		return nil, err
	}

	f.logger.Warn().
		Str("primary", f.primary.Name()).
		Err(err).
		Msg("Primary translator failed, trying fallback")
	return f.fallback.Translate(ctx, text)
}

// Compile-time interface check.
var _ memfsh.Translator = (*Fallback)(nil)
