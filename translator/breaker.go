package translator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/memfsh/memfsh"
	"github.com/memfsh/memfsh/config"
	"github.com/memfsh/memfsh/internal/util"
)

// Breaker wraps a Translator with circuit breaker protection. When the
// wrapped translator fails repeatedly, the circuit opens and subsequent
// calls fail fast with ErrUpstream without reaching the backend.
// Untranslatable input does not count as a failure; only upstream errors
// trip the breaker.
type Breaker struct {
	inner   memfsh.Translator
	breaker *gobreaker.CircuitBreaker[*memfsh.ParsedCommand]
	logger  zerolog.Logger
}

// NewBreaker wraps inner with a circuit breaker configured from cfg.
func NewBreaker(inner memfsh.Translator, cfg *config.Config) *Breaker {
	logger := util.GetLogger("translator.breaker")

	cb := gobreaker.NewCircuitBreaker[*memfsh.ParsedCommand](gobreaker.Settings{
		Name:        "translator:" + inner.Name(),
		MaxRequests: 1, // allow 1 probe in half-open state
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUntranslatable)
		},
	})

	return &Breaker{inner: inner, breaker: cb, logger: logger}
}

// Translate implements [memfsh.Translator]. Calls are routed through the
// circuit breaker.
func (b *Breaker) Translate(ctx context.Context, text string) (*memfsh.ParsedCommand, error) {
	cmd, err := b.breaker.Execute(func() (*memfsh.ParsedCommand, error) {
		return b.inner.Translate(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: translator %q circuit open", ErrUpstream, b.inner.Name())
		}
		return nil, err
	}
	return cmd, nil
}

// Name implements [memfsh.Translator].
func (b *Breaker) Name() string { return b.inner.Name() }

// State returns the current circuit breaker state for monitoring.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}

// Compile-time interface check.
var _ memfsh.Translator = (*Breaker)(nil)
