// Package terminal renders a running simulation in a text terminal with tcell.
package terminal

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
	golog "github.com/tochemey/goakt/v3/log"
)

const (
	turnStep = 0.08
	// terminal cells are about twice as tall as they are wide
	cellAspect = 2.0
)

// headings maps screen octants, counter-clockwise from east, to a glyph.
var headings = [8]rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

var (
	containerStyle = tcell.StyleDefault.Foreground(tcell.NewRGBColor(60, 90, 120))
	statusStyle    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.NewRGBColor(116, 179, 206))
)

// Viewer draws the latest snapshot of a simulation on a tcell screen and
// ticks the world at its configured rate.
type Viewer struct {
	screen tcell.Screen
	sim    *simulation.Simulation
	logger golog.Logger

	camera geometry.OrthoCamera
	styles []tcell.Style
	last   *simulation.WorldSnapshot
	paused bool
}

// NewViewer wraps an initialised screen. The caller keeps ownership of it.
func NewViewer(screen tcell.Screen, sim *simulation.Simulation, logger golog.Logger) *Viewer {
	cfg := sim.Config()
	v := &Viewer{
		screen: screen,
		sim:    sim,
		logger: logger,
		camera: geometry.OrthoCamera{Pitch: math.Pi / 2},
	}
	for _, c := range simulation.AgentColors(cfg.AgentCount, cfg.Seed) {
		r, g, b := simulation.RGB(c)
		v.styles = append(v.styles, tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b))))
	}
	v.fit()
	return v
}

// fit sizes the camera so the container fills the screen, keeping the view angles.
func (v *Viewer) fit() {
	w, h := v.screen.Size()
	yaw, pitch := v.camera.Yaw, v.camera.Pitch
	v.camera = geometry.FitCamera(float64(w)/cellAspect, float64(max(h-1, 1)), v.sim.Config().Container.Radius*1.05)
	v.camera.Yaw, v.camera.Pitch = yaw, pitch
}

// Run ticks and redraws until ctx is cancelled or the user quits.
func (v *Viewer) Run(ctx context.Context) error {
	ticker := time.NewTicker(v.sim.Period())
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				// screen finalised
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.handleInput(ev) {
				return nil
			}
			v.draw()
		case <-ticker.C:
			select {
			case snap := <-v.sim.Snapshots():
				v.last = snap
			default:
			}
			if !v.paused {
				if err := v.sim.Tick(ctx); err != nil {
					return fmt.Errorf("tick failed: %w", err)
				}
			}
			v.draw()
		}
	}
}

// handleInput applies one event and reports whether the viewer keeps running.
func (v *Viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.camera.Yaw -= turnStep
		case tcell.KeyRight:
			v.camera.Yaw += turnStep
		case tcell.KeyUp:
			v.camera.Pitch = math.Min(v.camera.Pitch+turnStep, math.Pi/2)
		case tcell.KeyDown:
			v.camera.Pitch = math.Max(v.camera.Pitch-turnStep, -math.Pi/2)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case ' ':
				v.paused = !v.paused
			case 's':
				if v.paused {
					if err := v.sim.Tick(context.Background()); err != nil {
						v.logger.Errorf("tick failed: %v", err)
					}
				}
			}
		}
	case *tcell.EventResize:
		v.fit()
		v.screen.Sync()
	}
	return true
}

func (v *Viewer) draw() {
	status := "waiting for the first tick..."
	if v.last != nil {
		status = statusLine(v.last, v.paused)
	}
	Render(v.screen, v.last, v.camera, v.styles, status)
}

func statusLine(snap *simulation.WorldSnapshot, paused bool) string {
	s := snap.Stats
	state := ""
	if paused {
		state = " [paused]"
	}
	return fmt.Sprintf(" tick %d%s | agents %d | speed %.2f | polarization %.2f | radius %.0f/%.0f | space pause, s step, arrows turn, q quit",
		s.Tick, state, s.Agents, s.MeanSpeed, s.Polarization, s.MeanRadius, snap.Container.Radius)
}

// Render draws snap through cam: the container outline, one heading glyph per
// agent with nearer agents on top, and status on the last row. A nil snap
// draws only the status. The camera works in units of cell heights.
func Render(screen tcell.Screen, snap *simulation.WorldSnapshot, cam geometry.OrthoCamera, styles []tcell.Style, status string) {
	screen.Clear()
	w, h := screen.Size()
	if h < 1 {
		return
	}
	field := h - 1

	if snap != nil {
		drawContainer(screen, snap.Container, cam, w, field)
		drawAgents(screen, snap.Transforms, cam, styles, w, field)
	}

	row := []rune(status)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(row) {
			r = row[x]
		}
		screen.SetContent(x, h-1, r, nil, statusStyle)
	}
	screen.Show()
}

func toCell(x, y float64) (int, int) {
	return int(math.Floor(x * cellAspect)), int(math.Floor(y))
}

func drawContainer(screen tcell.Screen, c flock.Sphere, cam geometry.OrthoCamera, w, h int) {
	cx, cy, _ := cam.Project(c.Center)
	rs := c.Radius * cam.Scale
	steps := max(64, int(rs*cellAspect*4))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x, y := toCell(cx+math.Cos(a)*rs, cy+math.Sin(a)*rs)
		if x >= 0 && x < w && y >= 0 && y < h {
			screen.SetContent(x, y, '·', nil, containerStyle)
		}
	}
}

func drawAgents(screen tcell.Screen, buf []float32, cam geometry.OrthoCamera, styles []tcell.Style, w, h int) {
	n := len(buf) / flock.TransformSize
	type mark struct {
		x, y  int
		depth float64
		glyph rune
		style tcell.Style
	}
	marks := make([]mark, 0, n)
	for i := 0; i < n; i++ {
		x, y, z := flock.Translation(buf, i)
		sx, sy, d := cam.Project(geometry.Vector3{X: float64(x), Y: float64(y), Z: float64(z)})
		col, row := toCell(sx, sy)
		if col < 0 || col >= w || row < 0 || row >= h {
			continue
		}
		fx, fy, fz := flock.Forward(buf, i)
		dx, dy := cam.ProjectDir(geometry.Vector3{X: float64(fx), Y: float64(fy), Z: float64(fz)})
		style := tcell.StyleDefault
		if i < len(styles) {
			style = styles[i]
		}
		marks = append(marks, mark{x: col, y: row, depth: d, glyph: headingGlyph(dx, dy), style: style})
	}
	// farthest first so nearer agents overwrite them
	slices.SortStableFunc(marks, func(a, b mark) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})
	for _, m := range marks {
		screen.SetContent(m.x, m.y, m.glyph, nil, m.style)
	}
}

// headingGlyph picks an arrow for a screen direction, y growing downward.
// Directions mostly along the view axis show as a dot.
func headingGlyph(dx, dy float64) rune {
	if math.Hypot(dx, dy) < 0.3 {
		return '•'
	}
	a := math.Atan2(-dy, dx)
	octant := int(math.Round(a/(math.Pi/4))+8) % 8
	return headings[octant]
}
