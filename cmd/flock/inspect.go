package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
)

// summarize prints the header of a recording, its frame count and the
// position of the first agent in the first and last frames.
func summarize(w io.Writer, r io.Reader) error {
	rr, err := simulation.NewRecordingReader(r)
	if err != nil {
		return err
	}
	h := rr.Header()
	fmt.Fprintf(w, "version %d, %d agents, %d floats per agent\n", h.Version, h.Agents, h.FloatsPerAgent)

	frames := 0
	var first, last []float32
	var firstTick, lastTick uint64
	for {
		tick, buf, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if frames == 0 {
			first, firstTick = buf, tick
		}
		last, lastTick = buf, tick
		frames++
	}
	fmt.Fprintf(w, "%d frames\n", frames)
	if frames == 0 || h.Agents == 0 {
		return nil
	}
	x, y, z := flock.Translation(first, 0)
	fmt.Fprintf(w, "agent 0 at tick %d: (%.2f, %.2f, %.2f)\n", firstTick, x, y, z)
	x, y, z = flock.Translation(last, 0)
	fmt.Fprintf(w, "agent 0 at tick %d: (%.2f, %.2f, %.2f)\n", lastTick, x, y, z)
	return nil
}
