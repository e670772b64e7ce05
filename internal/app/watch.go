package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/AthenaOracle/athena-genesis/internal/scheduler"
)

// Watch runs epochs sequentially on the configured interval, starting from
// opts.StartEpoch, until interrupted. Each tick is a complete epoch run; a
// failed epoch is logged and the loop continues with the next id.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watch.Interval,
		AlignToStart: a.Config.Watch.AlignToBucket,
		StartupDelay: a.Config.Watch.StartupDelay,
	}, a.Logger)

	a.Logger.Info().
		Uint64("start_epoch", opts.StartEpoch).
		Dur("interval", a.Config.Watch.Interval).
		Msg("starting epoch watch loop")

	err := sched.Run(ctx, func(ctx context.Context, seq uint64, _ time.Time) error {
		return a.RunEpoch(ctx, RunEpochOptions{
			Epoch:      opts.StartEpoch + seq,
			Pool:       opts.Pool,
			EmitProofs: opts.EmitProofs,
		})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.Logger.Info().Msg("epoch watch loop stopped")
	return nil
}
