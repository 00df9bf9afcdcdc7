// Package flock implements Reynolds style steering for a school of agents in 3D.
//
// Every tick each agent receives four forces (alignment, separation, cohesion
// and containment), integrates them into its velocity and position and turns
// to face where it is going. The neighbour search is a plain O(n²) scan,
// which is fine for a few hundred agents.
package flock

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
)

// body is the part of an agent its neighbours can perceive.
type body struct {
	pos, vel geometry.Vector3
}

// Forces are the steering contributions computed for one agent in one tick.
type Forces struct {
	Alignment   geometry.Vector3
	Separation  geometry.Vector3
	Cohesion    geometry.Vector3
	Containment geometry.Vector3
}

// Sum is the total acceleration the forces produce.
func (fs Forces) Sum() geometry.Vector3 {
	return fs.Alignment.Add(fs.Separation).Add(fs.Cohesion).Add(fs.Containment)
}

// Flock owns a fixed population of agents and their behaviour parameters.
// It is not safe for concurrent use: drive it from a single goroutine,
// one Update followed by one Export per tick.
type Flock struct {
	agents    []*Agent
	settings  Settings
	container Container

	bodies []body // perceived state, refreshed every tick
	ticks  uint64
}

// New creates a flock from agents and settings. The flock takes ownership of
// the agents and overwrites their speed, look-ahead and blend with settings.
func New(agents []*Agent, s Settings) (*Flock, error) {
	for i, a := range agents {
		if a == nil {
			return nil, fmt.Errorf("%w: agent %d is nil", ErrInvalidSettings, i)
		}
	}
	f := &Flock{
		agents: agents,
		bodies: make([]body, len(agents)),
	}
	if err := f.SetSettings(s); err != nil {
		return nil, err
	}
	return f, nil
}

// SetSettings validates and applies new parameters. They take effect on the next Update.
func (f *Flock) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	f.settings = s
	f.container = NewContainer(s.Container)
	for _, a := range f.agents {
		a.MaxSpeed = s.MaxSpeed
		a.LookAhead = s.LookAhead
		a.OrientationBlend = s.OrientationBlend
	}
	return nil
}

// Settings returns the current parameters.
func (f *Flock) Settings() Settings {
	return f.settings
}

// Container returns the boundary of the flock.
func (f *Flock) Container() Container {
	return f.container
}

// Len is the population size.
func (f *Flock) Len() int {
	return len(f.agents)
}

// Agent returns a copy of the i-th agent.
func (f *Flock) Agent(i int) Agent {
	return *f.agents[i]
}

// Ticks counts the calls to Update so far.
func (f *Flock) Ticks() uint64 {
	return f.ticks
}

// Update advances the whole population by one tick.
func (f *Flock) Update() {
	f.perceive()
	sequential := f.settings.Mode == UpdateSequential
	for i, a := range f.agents {
		fs := f.forcesFor(f.bodies[i])
		a.ApplyForce(fs.Alignment)
		a.ApplyForce(fs.Separation)
		a.ApplyForce(fs.Cohesion)
		a.ApplyForce(fs.Containment)
		a.Update()
		if sequential {
			f.bodies[i] = a.body()
		}
	}
	f.ticks++
}

// Forces computes, without applying them, the forces agent i would receive
// from the current state of the population.
func (f *Flock) Forces(i int) Forces {
	f.perceive()
	return f.forcesFor(f.bodies[i])
}

// Seek returns the steering force bringing agent i toward target.
func (f *Flock) Seek(i int, target geometry.Vector3) geometry.Vector3 {
	return f.seek(f.agents[i].body(), target)
}

func (f *Flock) perceive() {
	if len(f.bodies) != len(f.agents) {
		f.bodies = make([]body, len(f.agents))
	}
	for i, a := range f.agents {
		f.bodies[i] = a.body()
	}
}

func (f *Flock) forcesFor(me body) Forces {
	return Forces{
		Alignment:   f.alignment(me),
		Separation:  f.separation(me),
		Cohesion:    f.cohesion(me),
		Containment: f.container.force(me.pos, me.vel),
	}
}

// alignment steers toward the average heading of the neighbours.
func (f *Flock) alignment(me body) geometry.Vector3 {
	var sum geometry.Vector3
	count := 0
	r2 := f.settings.Align.EffectiveRange * f.settings.Align.EffectiveRange
	for _, other := range f.bodies {
		// distance 0 is ourselves (or someone exactly on top of us)
		if d2 := me.pos.DistanceSquaredTo(other.pos); d2 > 0 && d2 < r2 {
			sum = sum.Add(other.vel)
			count++
		}
	}
	return f.steer(sum, count, me)
}

// separation steers away from close neighbours, each weighted by 1/distance.
func (f *Flock) separation(me body) geometry.Vector3 {
	var sum geometry.Vector3
	count := 0
	r2 := f.settings.Separate.EffectiveRange * f.settings.Separate.EffectiveRange
	for _, other := range f.bodies {
		if d2 := me.pos.DistanceSquaredTo(other.pos); d2 > 0 && d2 < r2 {
			toMe := me.pos.Sub(other.pos).Normalize().Mul(1 / math.Sqrt(d2))
			sum = sum.Add(toMe)
			count++
		}
	}
	return f.steer(sum, count, me)
}

// cohesion seeks the average position of the neighbours.
func (f *Flock) cohesion(me body) geometry.Vector3 {
	var sum geometry.Vector3
	count := 0
	r2 := f.settings.Cohesion.EffectiveRange * f.settings.Cohesion.EffectiveRange
	for _, other := range f.bodies {
		if d2 := me.pos.DistanceSquaredTo(other.pos); d2 > 0 && d2 < r2 {
			sum = sum.Add(other.pos)
			count++
		}
	}
	if count == 0 {
		return geometry.Zero
	}
	return f.seek(me, sum.Mul(1/float64(count)))
}

// seek returns desired minus current velocity, clamped to Seek.MaxForce.
func (f *Flock) seek(me body, target geometry.Vector3) geometry.Vector3 {
	desired := target.Sub(me.pos).Normalize().Mul(f.settings.MaxSpeed)
	return desired.Sub(me.vel).ClampLength(f.settings.Seek.MaxForce)
}

// steer turns an accumulated neighbour vector into a steering force.
// Alignment and separation share the Separate.MaxForce clamp.
func (f *Flock) steer(sum geometry.Vector3, count int, me body) geometry.Vector3 {
	if count == 0 {
		return geometry.Zero
	}
	desired := sum.Mul(1 / float64(count)).Normalize().Mul(f.settings.MaxSpeed)
	return desired.Sub(me.vel).ClampLength(f.settings.Separate.MaxForce)
}
