// Package profile applies user profile updates.
package profile

import (
	"context"
	"time"
)

// Updater applies a pending profile update for one user.
type Updater interface {
	Apply(ctx context.Context, userID string) error
}

// UpdaterFunc adapts a function to the Updater interface.
type UpdaterFunc func(ctx context.Context, userID string) error

// Apply calls f.
func (f UpdaterFunc) Apply(ctx context.Context, userID string) error {
	return f(ctx, userID)
}

// SimulatedUpdater stands in for the profile store: it only waits Delay.
type SimulatedUpdater struct {
	Delay time.Duration
}

// NewSimulatedUpdater returns an updater that blocks for delay per user.
func NewSimulatedUpdater(delay time.Duration) *SimulatedUpdater {
	return &SimulatedUpdater{Delay: delay}
}

// Apply waits for the configured delay or until ctx is done.
func (u *SimulatedUpdater) Apply(ctx context.Context, userID string) error {
	if u.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(u.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
