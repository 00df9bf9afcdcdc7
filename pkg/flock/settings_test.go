package flock

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultSettings_Valid(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("DefaultSettings().Validate() error = %v", err)
	}
	s := DefaultSettings()
	if s.Mode != UpdateSnapshot {
		t.Errorf("default mode = %q; want %q", s.Mode, UpdateSnapshot)
	}
	if s.Container.AgentBoundingRadius != 14.84082207965583*2 {
		t.Errorf("AgentBoundingRadius = %v", s.Container.AgentBoundingRadius)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero max speed", func(s *Settings) { s.MaxSpeed = 0 }},
		{"NaN max speed", func(s *Settings) { s.MaxSpeed = math.NaN() }},
		{"negative look ahead", func(s *Settings) { s.LookAhead = -1 }},
		{"zero blend", func(s *Settings) { s.OrientationBlend = 0 }},
		{"blend above one", func(s *Settings) { s.OrientationBlend = 1.5 }},
		{"negative seek force", func(s *Settings) { s.Seek.MaxForce = -0.1 }},
		{"infinite align range", func(s *Settings) { s.Align.EffectiveRange = math.Inf(1) }},
		{"negative separate force", func(s *Settings) { s.Separate.MaxForce = -1 }},
		{"negative cohesion range", func(s *Settings) { s.Cohesion.EffectiveRange = -5 }},
		{"zero container radius", func(s *Settings) { s.Container.Radius = 0 }},
		{"zero container force", func(s *Settings) { s.Container.MaxForce = 0 }},
		{"unknown mode", func(s *Settings) { s.Mode = "parallel" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Validate() error = %v; want ErrInvalidSettings", err)
			}
		})
	}

	t.Run("zero ranges are allowed", func(t *testing.T) {
		s := DefaultSettings()
		s.Align.EffectiveRange = 0
		s.Separate.EffectiveRange = 0
		s.Cohesion.EffectiveRange = 0
		s.Mode = UpdateSequential
		if err := s.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}
