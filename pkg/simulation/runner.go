package simulation

import (
	"context"
	"fmt"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/flock"
	golog "github.com/tochemey/goakt/v3/log"
)

// Runner drives a simulation without a renderer, as fast as the world steps.
type Runner struct {
	Sim        *Simulation
	Logger     golog.Logger
	StatsEvery int       // log stats every StatsEvery ticks, 0 disables
	Recorder   *Recorder // optional
}

// Run advances the world by ticks and returns the stats of the last one.
// Each tick waits for its snapshot, so no frame is dropped.
func (r *Runner) Run(ctx context.Context, ticks int) (flock.Stats, error) {
	var last flock.Stats
	for i := 0; i < ticks; i++ {
		if err := r.Sim.Tick(ctx); err != nil {
			return last, fmt.Errorf("tick %d: %w", i, err)
		}
		var snap *WorldSnapshot
		select {
		case snap = <-r.Sim.Snapshots():
		case <-ctx.Done():
			return last, ctx.Err()
		}
		last = snap.Stats

		if r.Recorder != nil {
			if err := r.Recorder.WriteFrame(snap.Tick, snap.Transforms); err != nil {
				return last, fmt.Errorf("failed to record tick %d: %w", snap.Tick, err)
			}
		}
		if r.StatsEvery > 0 && snap.Tick%uint64(r.StatsEvery) == 0 {
			r.Logger.Infof("tick %d | t=%s | speed %.3f±%.3f | polarization %.3f | radius mean %.1f max %.1f",
				snap.Tick, snap.Elapsed, last.MeanSpeed, last.SpeedStdDev, last.Polarization, last.MeanRadius, last.MaxRadius)
		}
	}
	if r.Recorder != nil {
		if err := r.Recorder.Flush(); err != nil {
			return last, fmt.Errorf("failed to flush recording: %w", err)
		}
	}
	return last, nil
}
