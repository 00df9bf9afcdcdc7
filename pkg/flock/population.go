package flock

import (
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
)

const (
	// SpawnCubeSide is the side of the cube, centred on the origin, agents spawn in.
	SpawnCubeSide = 1000.0
	// spawnVelocitySteps draws velocity components in [-spawnVelocitySteps, spawnVelocitySteps]*spawnVelocityUnit.
	spawnVelocitySteps = 100
	spawnVelocityUnit  = 0.1
)

// NewPopulation creates n agents with random positions in the spawn cube and
// random velocity components in [-10, 10].
func NewPopulation(n int, maxSpeed float64, rng *rand.Rand) []*Agent {
	agents := make([]*Agent, n)
	for i := range agents {
		pos := geometry.Vector3{
			X: (rng.Float64() - 0.5) * SpawnCubeSide,
			Y: (rng.Float64() - 0.5) * SpawnCubeSide,
			Z: (rng.Float64() - 0.5) * SpawnCubeSide,
		}
		vel := geometry.Vector3{
			X: randomStep(rng),
			Y: randomStep(rng),
			Z: randomStep(rng),
		}
		agents[i] = NewAgent(pos, vel, maxSpeed)
	}
	return agents
}

func randomStep(rng *rand.Rand) float64 {
	return float64(rng.IntN(2*spawnVelocitySteps+1)-spawnVelocitySteps) * spawnVelocityUnit
}

// NewRand returns a deterministic random source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
