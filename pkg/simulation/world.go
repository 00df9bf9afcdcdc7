package simulation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/flock"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorldSnapshot is what the world hands to renderers after every tick.
type WorldSnapshot struct {
	Tick       uint64
	Elapsed    time.Duration // simulated time
	Transforms []float32     // flock.TransformSize floats per agent, column-major
	Stats      flock.Stats
	Container  flock.Sphere
}

// Status answers a status query: the latest stats and the config in effect.
type Status struct {
	Stats  flock.Stats `json:"stats"`
	Config Config      `json:"config"`
}

// WorldActor owns the flock. Messages:
//   - *durationpb.Duration: advance one tick of that simulated length
//   - *structpb.Struct: runtime config overrides
//   - *emptypb.Empty: status query, answered with a *structpb.Struct
type WorldActor struct {
	cfg        *Config
	flock      *flock.Flock
	snapshotCh chan<- *WorldSnapshot
	elapsed    time.Duration

	// --- Benchmark Stats ---
	tickCount    int
	droppedCount int
	lastLogTime  time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit. A nil snapshotCh disables snapshots.
func NewWorldActor(snapshotCh chan<- *WorldSnapshot, cfg *Config) *WorldActor {
	return &WorldActor{
		cfg:         cfg,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is spawning a school of %d...", w.cfg.AgentCount)
	f, err := NewFlock(w.cfg)
	if err != nil {
		return fmt.Errorf("failed to create the flock: %w", err)
	}
	w.flock = f
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("World started with %d agents in %s mode", w.flock.Len(), w.flock.Settings().Mode)

	case *durationpb.Duration:
		w.flock.Update()
		w.elapsed += msg.AsDuration()
		w.tickCount++
		w.pushSnapshot()
		w.logBenchmarks(ctx)

	case *structpb.Struct:
		w.applyOverrides(ctx, msg)

	case *emptypb.Empty:
		status, err := w.status()
		if err != nil {
			ctx.Logger().Errorf("status query failed: %v", err)
			ctx.Response(&structpb.Struct{})
			return
		}
		ctx.Response(status)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d ticks", w.flock.Ticks())
	return nil
}

func (w *WorldActor) applyOverrides(ctx *actor.ReceiveContext, o *structpb.Struct) {
	if err := w.override(o); err != nil {
		ctx.Logger().Warnf("rejected overrides: %v", err)
		return
	}
	ctx.Logger().Debugf("applied overrides %v", o.AsMap())
}

// override applies o to the config and the flock, or leaves both untouched.
func (w *WorldActor) override(o *structpb.Struct) error {
	next, err := w.cfg.ApplyOverrides(o)
	if err != nil {
		return err
	}
	s, err := next.Settings()
	if err != nil {
		return err
	}
	if err := w.flock.SetSettings(s); err != nil {
		return err
	}
	w.cfg = next
	return nil
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.buildSnapshot():
	default:
		// renderer busy, skip frame
		w.droppedCount++
	}
}

func (w *WorldActor) buildSnapshot() *WorldSnapshot {
	return &WorldSnapshot{
		Tick:       w.flock.Ticks(),
		Elapsed:    w.elapsed,
		Transforms: w.flock.Export(),
		Stats:      w.flock.Stats(),
		Container:  w.flock.Container().Sphere(),
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	s := w.flock.Stats()
	ctx.Logger().Infof("📊 TICK RATE: %d/sec (dropped frames: %d) | tick %d | speed %.2f±%.2f | polarization %.2f",
		w.tickCount, w.droppedCount, s.Tick, s.MeanSpeed, s.SpeedStdDev, s.Polarization)
	w.tickCount = 0
	w.droppedCount = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) status() (*structpb.Struct, error) {
	return encodeStruct(Status{Stats: w.flock.Stats(), Config: *w.cfg})
}

// encodeStruct converts any JSON-tagged value into a protobuf Struct.
func encodeStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// decodeStruct is the inverse of encodeStruct.
func decodeStruct(s *structpb.Struct, v any) error {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
