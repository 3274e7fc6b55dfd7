package app

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrNoUpcomingGame is returned when the recurring schedule has no future
// occurrence. Callers report it to their one client and continue.
var ErrNoUpcomingGame = errors.New("no upcoming game scheduled")

// GameScheduler owns the recurring game schedule. It answers how long until
// the next game starts and, when run, publishes the start signal on each
// occurrence. Occurrences repeat at a fixed interval anchored at construction.
//
// All fields are immutable after construction, so TimeTillNextGame is safe to
// call concurrently and arbitrarily often.
type GameScheduler struct {
	notifier *StartNotifier
	interval time.Duration
	anchor   time.Time
	clock    clockwork.Clock
}

// NewGameScheduler builds a scheduler that fires every interval. Use
// clockwork.NewRealClock in production and a fake clock in tests.
func NewGameScheduler(notifier *StartNotifier, interval time.Duration, clock clockwork.Clock) *GameScheduler {
	return &GameScheduler{
		notifier: notifier,
		interval: interval,
		anchor:   clock.Now(),
		clock:    clock,
	}
}

// TimeTillNextGame reports the duration until the next scheduled start.
func (s *GameScheduler) TimeTillNextGame() (time.Duration, error) {
	if s.interval <= 0 {
		return 0, ErrNoUpcomingGame
	}
	elapsed := s.clock.Since(s.anchor)
	return s.interval - elapsed%s.interval, nil
}

// Run publishes a start signal on every occurrence until ctx is done. A missed
// round only means clients wait for the next tick, so nothing here is fatal to
// the trigger besides cancellation.
func (s *GameScheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return ErrNoUpcomingGame
	}
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			s.notifier.Publish()
			log.Info().Msg("game start signal published")
		}
	}
}
