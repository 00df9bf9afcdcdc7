package flock

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSettings is wrapped by every validation failure of Settings.
var ErrInvalidSettings = errors.New("invalid flock settings")

// UpdateMode selects which population state the forces of a tick are computed from.
type UpdateMode string

const (
	// UpdateSnapshot computes every force of a tick from the population as it was
	// when the tick started. Results do not depend on population order.
	UpdateSnapshot UpdateMode = "snapshot"
	// UpdateSequential applies and integrates agent by agent, so agent i sees the
	// already moved agents 0..i-1. This reproduces the classic interleaved loop.
	UpdateSequential UpdateMode = "sequential"
)

// Reference tuning of the fish school this package was built for.
const (
	DefaultMaxSpeed            = 3.0
	DefaultLookAhead           = 10.0
	DefaultOrientationBlend    = 1.0
	DefaultSeekMaxForce        = 0.04
	DefaultAlignRange          = 85.0
	DefaultAlignMaxForce       = 0.16
	DefaultSeparateRange       = 70.0
	DefaultSeparateMaxForce    = 0.2
	DefaultCohesionRange       = 100.0
	DefaultContainerRadius     = 1500.0
	DefaultAgentBoundingRadius = 14.84082207965583 * 2
	DefaultContainerMaxForce   = 10.0
)

// SeekSettings tunes the seek behaviour, which cohesion also routes through.
type SeekSettings struct {
	MaxForce float64
}

// RangeSettings tunes a neighbour based behaviour.
type RangeSettings struct {
	EffectiveRange float64 // neighbours count when 0 < distance < EffectiveRange
	MaxForce       float64
}

// CohesionSettings tunes cohesion. Its force is clamped by Seek.MaxForce.
type CohesionSettings struct {
	EffectiveRange float64
}

// ContainerSettings describes the spherical region keeping the flock together.
type ContainerSettings struct {
	Radius              float64
	AgentBoundingRadius float64 // rendered half extent of one agent
	MaxForce            float64 // saturation of the containment force
}

// Settings controls the physics constants for the simulation.
// Align.MaxForce is carried for completeness but alignment and separation
// both clamp with Separate.MaxForce.
type Settings struct {
	MaxSpeed         float64
	LookAhead        float64
	OrientationBlend float64

	Seek      SeekSettings
	Align     RangeSettings
	Separate  RangeSettings
	Cohesion  CohesionSettings
	Container ContainerSettings

	Mode UpdateMode
}

// DefaultSettings returns the reference tuning.
func DefaultSettings() Settings {
	return Settings{
		MaxSpeed:         DefaultMaxSpeed,
		LookAhead:        DefaultLookAhead,
		OrientationBlend: DefaultOrientationBlend,
		Seek:             SeekSettings{MaxForce: DefaultSeekMaxForce},
		Align:            RangeSettings{EffectiveRange: DefaultAlignRange, MaxForce: DefaultAlignMaxForce},
		Separate:         RangeSettings{EffectiveRange: DefaultSeparateRange, MaxForce: DefaultSeparateMaxForce},
		Cohesion:         CohesionSettings{EffectiveRange: DefaultCohesionRange},
		Container: ContainerSettings{
			Radius:              DefaultContainerRadius,
			AgentBoundingRadius: DefaultAgentBoundingRadius,
			MaxForce:            DefaultContainerMaxForce,
		},
		Mode: UpdateSnapshot,
	}
}

// Validate checks that every parameter is a usable number.
func (s Settings) Validate() error {
	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"maxSpeed", s.MaxSpeed, true},
		{"lookAhead", s.LookAhead, false},
		{"orientationBlend", s.OrientationBlend, true},
		{"seek.maxForce", s.Seek.MaxForce, false},
		{"align.effectiveRange", s.Align.EffectiveRange, false},
		{"align.maxForce", s.Align.MaxForce, false},
		{"separate.effectiveRange", s.Separate.EffectiveRange, false},
		{"separate.maxForce", s.Separate.MaxForce, false},
		{"cohesion.effectiveRange", s.Cohesion.EffectiveRange, false},
		{"container.radius", s.Container.Radius, true},
		{"container.agentBoundingRadius", s.Container.AgentBoundingRadius, false},
		{"container.maxForce", s.Container.MaxForce, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidSettings, c.name, c.value)
		}
		if c.positive && c.value <= 0 {
			return fmt.Errorf("%w: %s must be > 0, got %v", ErrInvalidSettings, c.name, c.value)
		}
		if c.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidSettings, c.name, c.value)
		}
	}
	if s.OrientationBlend > 1 {
		return fmt.Errorf("%w: orientationBlend must be in (0, 1], got %v", ErrInvalidSettings, s.OrientationBlend)
	}
	switch s.Mode {
	case UpdateSnapshot, UpdateSequential:
	default:
		return fmt.Errorf("%w: unknown update mode %q", ErrInvalidSettings, s.Mode)
	}
	return nil
}
