package simulation

import "github.com/lao-tseu-is-alive/go-flock3d/pkg/flock"

// Palette holds the school colours as 0xRRGGBB.
var Palette = []uint32{0x74b3ce, 0x508991, 0x172a3a, 0x004346, 0x09bc8a, 0x9e829c}

// AgentColors picks a palette entry for each of n agents, deterministically for seed.
func AgentColors(n int, seed uint64) []uint32 {
	rng := flock.NewRand(seed)
	colors := make([]uint32, n)
	for i := range colors {
		colors[i] = Palette[rng.IntN(len(Palette))]
	}
	return colors
}

// RGB splits a palette entry into its channels.
func RGB(c uint32) (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}
