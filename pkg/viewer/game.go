// Package viewer renders a running simulation in an ebiten window.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/ui"
	golog "github.com/tochemey/goakt/v3/log"
)

const (
	yawSpeed   = 0.02 // radians per frame while an arrow key is held
	agentSize  = 7.0  // screen length of an agent triangle
	panelWidth = 260
)

var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	ctx       context.Context
	sim       *simulation.Simulation
	logger    golog.Logger
	lastState *simulation.WorldSnapshot

	width, height int
	camera        geometry.OrthoCamera
	colors        []color.RGBA
	paused        bool

	// UI Controls
	panel         *ui.UIPanel
	sliders       []*ui.Slider
	showContainer *ui.Checkbox
	showStats     *ui.Checkbox

	// scratch buffers reused every frame
	order    []int
	depth    []float64
	vertices []ebiten.Vertex
	indices  []uint16

	updateAvg float64 // rolling average in ms
	drawAvg   float64
}

// NewGame creates the window content for sim. The window itself is opened by Run.
func NewGame(ctx context.Context, sim *simulation.Simulation, logger golog.Logger, width, height int) *Game {
	cfg := sim.Config()
	g := &Game{
		ctx:    ctx,
		sim:    sim,
		logger: logger,
		width:  width,
		height: height,
		camera: geometry.OrthoCamera{Pitch: 0.35},
	}
	g.refit()

	for _, c := range simulation.AgentColors(cfg.AgentCount, cfg.Seed) {
		r, gr, b := simulation.RGB(c)
		g.colors = append(g.colors, color.RGBA{R: r, G: gr, B: b, A: 255})
	}

	g.panel = ui.NewUIPanel("Flock (H hides)", 10, 10, panelWidth, float64(height)-20)
	g.panel.AddSection("Kinematics")
	g.addSlider("Max Speed", "maxSpeed", 0.5, 10, cfg.MaxSpeed)
	g.addSlider("Seek Max Force", "seek.maxForce", 0, 0.5, cfg.Seek.MaxForce)
	g.addSlider("Orientation Blend", "orientationBlend", 0.05, 1, cfg.OrientationBlend)
	g.panel.AddSection("Alignment")
	g.addSlider("Range", "align.effectiveRange", 0, 300, cfg.Align.EffectiveRange)
	g.panel.AddSection("Separation")
	g.addSlider("Range", "separate.effectiveRange", 0, 300, cfg.Separate.EffectiveRange)
	g.addSlider("Max Force", "separate.maxForce", 0, 1, cfg.Separate.MaxForce)
	g.panel.AddSection("Cohesion")
	g.addSlider("Range", "cohesion.effectiveRange", 0, 300, cfg.Cohesion.EffectiveRange)
	g.panel.AddSection("Container")
	g.addSlider("Radius", "container.radius", 200, 3000, cfg.Container.Radius)
	g.addSlider("Max Force", "container.maxForce", 0.1, 50, cfg.Container.MaxForce)
	g.panel.AddSection("Display")
	g.showContainer = g.panel.AddCheckbox("Show Container", true)
	g.showStats = g.panel.AddCheckbox("Show Stats", true)
	g.panel.AddButton("Pause / Resume (Space)", func() { g.paused = !g.paused })
	g.panel.AddButton("Step (Right while paused)", g.stepPaused)
	return g
}

func (g *Game) addSlider(label, key string, min, max, value float64) {
	s := g.panel.AddSlider(label, key, min, max, value)
	if max-min >= 100 {
		s.Format = "%.0f"
	}
	g.sliders = append(g.sliders, s)
}

// Run opens the window and blocks until it is closed.
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(g.sim.Config().TickRate)
	return ebiten.RunGame(g)
}

// stepPaused advances one tick when paused and does nothing while running.
func (g *Game) stepPaused() {
	if g.paused {
		g.step()
	}
}

func (g *Game) step() {
	if err := g.sim.Tick(g.ctx); err != nil {
		g.logger.Errorf("tick failed: %v", err)
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()
	g.handleKeys()
	g.sendOverrides()

	// latest frame, if the world produced one
	select {
	case snap := <-g.sim.Snapshots():
		g.lastState = snap
	default:
	}

	if !g.paused {
		g.step()
	}
	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.panel.Hidden = !g.panel.Hidden
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.stepPaused()
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.camera.Yaw -= yawSpeed
	}
	if !g.paused && ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.camera.Yaw += yawSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.camera.Pitch = math.Min(g.camera.Pitch+yawSpeed, math.Pi/2)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.camera.Pitch = math.Max(g.camera.Pitch-yawSpeed, -math.Pi/2)
	}
}

func (g *Game) sendOverrides() {
	for _, s := range g.sliders {
		if s.Changed() {
			g.override(s.Key, s.Value)
		}
	}
}

// override sends one config change to the world. A new container radius refits the camera.
func (g *Game) override(key string, value float64) {
	if err := g.sim.Override(g.ctx, simulation.OverrideValue(key, value)); err != nil {
		g.logger.Warnf("slider %s: %v", key, err)
		return
	}
	if key == "container.radius" {
		g.refit()
	}
}

// refit frames the container in the window, keeping the view angles.
func (g *Game) refit() {
	yaw, pitch := g.camera.Yaw, g.camera.Pitch
	g.camera = geometry.FitCamera(float64(g.width), float64(g.height), g.sim.Config().Container.Radius*1.05)
	g.camera.Yaw, g.camera.Pitch = yaw, pitch
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 4, G: 12, B: 24, A: 255})
	if g.lastState == nil {
		ebitenutil.DebugPrintAt(screen, "waiting for the first tick...", g.width/2-80, g.height/2)
		return
	}

	if g.showContainer.Value {
		g.drawContainer(screen)
	}
	g.drawAgents(screen)
	g.panel.Draw(screen)
	if g.showStats.Value {
		g.drawStats(screen)
	}
}

func (g *Game) drawContainer(screen *ebiten.Image) {
	c := g.lastState.Container
	x, y, _ := g.camera.Project(c.Center)
	vector.StrokeCircle(screen, float32(x), float32(y), float32(c.Radius*g.camera.Scale), 1,
		color.RGBA{R: 80, G: 120, B: 160, A: 160}, true)
}

// drawAgents draws one triangle per agent pointing along its heading,
// farthest first, in a single batch.
func (g *Game) drawAgents(screen *ebiten.Image) {
	buf := g.lastState.Transforms
	n := len(buf) / flock.TransformSize

	g.order = g.order[:0]
	g.depth = slices.Grow(g.depth[:0], n)[:n]
	for i := 0; i < n; i++ {
		x, y, z := flock.Translation(buf, i)
		_, _, d := g.camera.Project(geometry.Vector3{X: float64(x), Y: float64(y), Z: float64(z)})
		g.depth[i] = d
		g.order = append(g.order, i)
	}
	slices.SortFunc(g.order, func(a, b int) int {
		switch {
		case g.depth[a] > g.depth[b]:
			return -1
		case g.depth[a] < g.depth[b]:
			return 1
		}
		return 0
	})

	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	for _, i := range g.order {
		x, y, z := flock.Translation(buf, i)
		fx, fy, fz := flock.Forward(buf, i)
		sx, sy, _ := g.camera.Project(geometry.Vector3{X: float64(x), Y: float64(y), Z: float64(z)})
		dx, dy := g.camera.ProjectDir(geometry.Vector3{X: float64(fx), Y: float64(fy), Z: float64(fz)})

		// foreshortened when heading toward or away from the viewer
		angle := math.Atan2(dy, dx)
		size := agentSize * math.Max(math.Hypot(dx, dy), 0.3)

		clr := color.RGBA{R: 200, G: 220, B: 255, A: 255}
		if i < len(g.colors) {
			clr = g.colors[i]
		}
		g.appendTriangle(
			sx+math.Cos(angle)*size, sy+math.Sin(angle)*size,
			sx+math.Cos(angle+2.5)*agentSize*0.6, sy+math.Sin(angle+2.5)*agentSize*0.6,
			sx+math.Cos(angle-2.5)*agentSize*0.6, sy+math.Sin(angle-2.5)*agentSize*0.6,
			clr,
		)
	}
	screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}

func (g *Game) appendTriangle(x0, y0, x1, y1, x2, y2 float64, clr color.RGBA) {
	r, gr, b := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255
	base := uint16(len(g.vertices))
	for _, p := range [3][2]float64{{x0, y0}, {x1, y1}, {x2, y2}} {
		g.vertices = append(g.vertices, ebiten.Vertex{
			DstX: float32(p[0]), DstY: float32(p[1]),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: gr, ColorB: b, ColorA: 1,
		})
	}
	g.indices = append(g.indices, base, base+1, base+2)
}

func (g *Game) drawStats(screen *ebiten.Image) {
	s := g.lastState.Stats
	state := "running"
	if g.paused {
		state = "paused"
	}
	msg := fmt.Sprintf("tick %d (%s)  t=%s\nagents %d\nspeed %.2f ± %.2f\npolarization %.2f\nradius mean %.0f max %.0f\n\nFPS %.1f  TPS %.1f\nUpdate %.2fms  Draw %.2fms",
		s.Tick, state, g.lastState.Elapsed.Truncate(time.Millisecond),
		s.Agents, s.MeanSpeed, s.SpeedStdDev, s.Polarization, s.MeanRadius, s.MaxRadius,
		ebiten.ActualFPS(), ebiten.ActualTPS(), g.updateAvg, g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, g.width-230, 10)
}

func (g *Game) Layout(w, h int) (int, int) {
	if w != g.width || h != g.height {
		g.width, g.height = w, h
		g.refit()
		g.panel.Height = float64(h) - 20
	}
	return w, h
}
