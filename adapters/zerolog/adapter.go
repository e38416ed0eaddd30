// Package zerologadapter bridges rs/zerolog into the session.Logger
// interface, so deployments that already ship zerolog get structured session
// logs instead of the default stdout printer.
package zerologadapter

import (
	"github.com/rs/zerolog"

	session "github.com/hcas-dev/go-session"
)

var _ session.Logger = (*Adapter)(nil)

// Adapter wraps a zerolog.Logger
type Adapter struct {
	log zerolog.Logger
}

// New returns an adapter around the given logger, tagged with a component
// field so session entries are easy to filter.
func New(log zerolog.Logger) *Adapter {
	return &Adapter{
		log: log.With().Str("component", "session").Logger(),
	}
}

func (a *Adapter) Debug(format string, args ...any) {
	a.log.Debug().Msgf(format, args...)
}

func (a *Adapter) Info(format string, args ...any) {
	a.log.Info().Msgf(format, args...)
}

func (a *Adapter) Warn(format string, args ...any) {
	a.log.Warn().Msgf(format, args...)
}

func (a *Adapter) Error(format string, args ...any) {
	a.log.Error().Msgf(format, args...)
}
