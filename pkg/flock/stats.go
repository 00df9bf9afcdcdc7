package flock

import (
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises the state of the flock after a tick.
type Stats struct {
	Tick   uint64 `json:"tick"`
	Agents int    `json:"agents"`

	MeanSpeed   float64 `json:"meanSpeed"`
	SpeedStdDev float64 `json:"speedStdDev"`

	// Polarization is the length of the mean unit heading: 1 when every agent
	// swims the same way, close to 0 for a disordered school.
	Polarization float64 `json:"polarization"`

	Centroid   geometry.Vector3 `json:"centroid"`
	MeanRadius float64          `json:"meanRadius"` // mean distance to the container centre
	MaxRadius  float64          `json:"maxRadius"`
}

// Stats computes the summary of the current population.
func (f *Flock) Stats() Stats {
	n := len(f.agents)
	s := Stats{Tick: f.ticks, Agents: n}
	if n == 0 {
		return s
	}

	speeds := make([]float64, n)
	radii := make([]float64, n)
	var heading, centroid geometry.Vector3
	for i, a := range f.agents {
		speeds[i] = a.Velocity.Len()
		radii[i] = a.Position.Len()
		heading = heading.Add(a.Velocity.Normalize())
		centroid = centroid.Add(a.Position)
	}

	if n > 1 {
		s.MeanSpeed, s.SpeedStdDev = stat.MeanStdDev(speeds, nil)
	} else {
		s.MeanSpeed = speeds[0]
	}
	s.Polarization = heading.Mul(1 / float64(n)).Len()
	s.Centroid = centroid.Mul(1 / float64(n))
	s.MeanRadius = stat.Mean(radii, nil)
	s.MaxRadius = floats.Max(radii)
	return s
}
