package terminal

import (
	"math"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
)

// transform builds a column-major matrix for an agent at p facing forward.
func transform(p, forward geometry.Vector3) []float32 {
	m := make([]float32, flock.TransformSize)
	m[0], m[5], m[15] = 1, 1, 1
	m[8], m[9], m[10] = float32(-forward.X), float32(-forward.Y), float32(-forward.Z)
	m[flock.TranslationX], m[flock.TranslationY], m[flock.TranslationZ] = float32(p.X), float32(p.Y), float32(p.Z)
	return m
}

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(w, h)
	return s
}

func cellAt(s tcell.SimulationScreen, x, y int) (rune, tcell.Style) {
	cells, w, _ := s.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return ' ', c.Style
	}
	return c.Runes[0], c.Style
}

func TestRender(t *testing.T) {
	s := newScreen(t, 41, 22)
	// top-down: screen x is world x, screen y is world z, nearer means higher y
	cam := geometry.FitCamera(20.5, 21, 105)
	cam.Pitch = math.Pi / 2

	far := transform(geometry.Zero, geometry.Vector3{X: 1})
	near := transform(geometry.Vector3{Y: 50}, geometry.Vector3{Z: 1})
	alone := transform(geometry.Vector3{X: -50}, geometry.Vector3{X: -1})
	snap := &simulation.WorldSnapshot{
		Tick:       3,
		Transforms: append(append(far, near...), alone...),
		Container:  flock.Sphere{Radius: 100},
	}
	red := tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 0, 0))
	blue := tcell.StyleDefault.Foreground(tcell.NewRGBColor(0, 0, 255))
	styles := []tcell.Style{red, blue, red}

	Render(s, snap, cam, styles, "hello")

	r, st := cellAt(s, 20, 10)
	if r != '↓' {
		t.Errorf("centre cell = %q; want the nearer agent heading +z '↓'", r)
	}
	if fg, _, _ := st.Decompose(); fg != tcell.NewRGBColor(0, 0, 255) {
		t.Errorf("centre cell colour = %v; want the nearer agent's", fg)
	}

	// x = -50 lands at 10.25 - 50*scale on the half-width grid
	col := int(math.Floor((10.25 - 50*cam.Scale) * cellAspect))
	if r, _ := cellAt(s, col, 10); r != '←' {
		t.Errorf("cell (%d, 10) = %q; want '←'", col, r)
	}

	_, w, _ := s.GetContents()
	outline := false
	for x := 17; x < 24; x++ {
		if r, _ := cellAt(s, x, 0); r == '·' {
			outline = true
		}
	}
	if !outline {
		t.Error("no container outline near the top of the field")
	}

	var row strings.Builder
	for x := 0; x < w; x++ {
		r, _ := cellAt(s, x, 21)
		row.WriteRune(r)
	}
	if got := strings.TrimRight(row.String(), " "); got != "hello" {
		t.Errorf("status row = %q; want %q", got, "hello")
	}
}

func TestRender_NoSnapshot(t *testing.T) {
	s := newScreen(t, 20, 5)
	Render(s, nil, geometry.FitCamera(10, 4, 100), nil, "waiting")
	for y := 0; y < 4; y++ {
		for x := 0; x < 20; x++ {
			if r, _ := cellAt(s, x, y); r != ' ' {
				t.Fatalf("cell (%d, %d) = %q; want blank", x, y, r)
			}
		}
	}
	if r, _ := cellAt(s, 0, 4); r != 'w' {
		t.Errorf("status starts with %q; want 'w'", r)
	}
}

func TestRender_OffScreenAgentsSkipped(t *testing.T) {
	s := newScreen(t, 10, 6)
	cam := geometry.FitCamera(5, 5, 10)
	cam.Pitch = math.Pi / 2
	snap := &simulation.WorldSnapshot{
		Transforms: transform(geometry.Vector3{X: 1e6}, geometry.Vector3{X: 1}),
		Container:  flock.Sphere{Radius: 1e6},
	}
	// must not panic on agents outside the screen
	Render(s, snap, cam, nil, "")
}

func TestHeadingGlyph(t *testing.T) {
	tests := []struct {
		dx, dy float64
		want   rune
	}{
		{1, 0, '→'},
		{0, -1, '↑'},
		{-1, 0, '←'},
		{0, 1, '↓'},
		{0.7, -0.7, '↗'},
		{-0.7, 0.7, '↙'},
		{0.1, 0.1, '•'},
	}
	for _, tt := range tests {
		if got := headingGlyph(tt.dx, tt.dy); got != tt.want {
			t.Errorf("headingGlyph(%v, %v) = %q; want %q", tt.dx, tt.dy, got, tt.want)
		}
	}
}

func TestViewer_HandleInput(t *testing.T) {
	v := &Viewer{screen: newScreen(t, 10, 5), camera: geometry.OrthoCamera{Pitch: math.Pi / 2}}

	if !v.handleInput(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)) || !v.paused {
		t.Error("space should pause and keep running")
	}
	if !v.handleInput(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone)) || v.camera.Yaw != -turnStep {
		t.Errorf("left arrow: yaw = %v; want %v", v.camera.Yaw, -turnStep)
	}
	v.handleInput(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if v.camera.Pitch != math.Pi/2 {
		t.Errorf("pitch = %v; want clamped to pi/2", v.camera.Pitch)
	}

	for _, ev := range []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
	} {
		if v.handleInput(ev) {
			t.Errorf("%s should quit", ev.Name())
		}
	}
}
