// Package simulation drives a flock from an actor system: configuration,
// the world actor owning the flock, and the headless runner and recorder.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const askTimeout = 5 * time.Second

// Simulation is the handle renderers use to drive the world actor.
type Simulation struct {
	System   actor.ActorSystem
	worldPID *actor.PID

	snapshotCh chan *WorldSnapshot
	cfg        *Config // mirror of the world config, used to reject overrides early
	period     time.Duration
}

// Start boots an actor system and spawns the world for cfg.
func Start(ctx context.Context, cfg *Config, logger golog.Logger) (*Simulation, error) {
	if _, err := cfg.Settings(); err != nil {
		return nil, err
	}
	system, err := actor.NewActorSystem("FlockWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}

	// one slot: renderers always look at the latest frame
	snapshotCh := make(chan *WorldSnapshot, 1)
	pid, err := system.Spawn(ctx, "world", NewWorldActor(snapshotCh, cfg))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	rate := cfg.TickRate
	if rate <= 0 {
		rate = DefaultConfig().TickRate
	}
	return &Simulation{
		System:     system,
		worldPID:   pid,
		snapshotCh: snapshotCh,
		cfg:        cfg,
		period:     time.Second / time.Duration(rate),
	}, nil
}

// Config is the configuration currently in effect.
func (s *Simulation) Config() *Config {
	return s.cfg
}

// Period is the simulated duration of one tick.
func (s *Simulation) Period() time.Duration {
	return s.period
}

// Tick asks the world to advance by one tick. It does not wait for the step.
func (s *Simulation) Tick(ctx context.Context) error {
	return actor.Tell(ctx, s.worldPID, durationpb.New(s.period))
}

// Snapshots delivers the frame produced by each tick. Frames nobody picked
// up in time are dropped.
func (s *Simulation) Snapshots() <-chan *WorldSnapshot {
	return s.snapshotCh
}

// Override validates and sends runtime config changes, keyed like the config file.
func (s *Simulation) Override(ctx context.Context, values map[string]any) error {
	o, err := structpb.NewStruct(values)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	next, err := s.cfg.ApplyOverrides(o)
	if err != nil {
		return err
	}
	if err := actor.Tell(ctx, s.worldPID, o); err != nil {
		return fmt.Errorf("failed to send overrides: %w", err)
	}
	s.cfg = next
	return nil
}

// Status queries the world for its latest stats and config.
func (s *Simulation) Status(ctx context.Context) (*Status, error) {
	resp, err := actor.Ask(ctx, s.worldPID, &emptypb.Empty{}, askTimeout)
	if err != nil {
		return nil, fmt.Errorf("status query failed: %w", err)
	}
	st, ok := resp.(*structpb.Struct)
	if !ok {
		return nil, fmt.Errorf("status query failed: unexpected reply %T", resp)
	}
	var status Status
	if err := decodeStruct(st, &status); err != nil {
		return nil, fmt.Errorf("status query failed: %w", err)
	}
	return &status, nil
}

// Stop shuts the world and its actor system down.
func (s *Simulation) Stop(ctx context.Context) error {
	return s.System.Stop(ctx)
}
