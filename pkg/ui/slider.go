package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider edits a float in [Min, Max] by dragging.
type Slider struct {
	Key      string // config key the value is sent under
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
	Format   string // value label format, "%.2f" when empty

	dragging bool
	changed  bool
}

func NewSlider(x, y, w float64, key string, min, max, value float64) *Slider {
	return &Slider{Key: key, Value: clamp(value, min, max), Min: min, Max: max, X: x, Y: y, W: w, H: 10}
}

// Changed reports whether the value moved since the last call.
func (s *Slider) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

func (s *Slider) Update() {
	mx, my := ebiten.CursorPosition()
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		s.dragging = false
		return
	}
	if !s.dragging && !s.contains(float64(mx), float64(my)) {
		return
	}
	s.dragging = true
	v := clamp(s.Min+(float64(mx)-s.X)/s.W*(s.Max-s.Min), s.Min, s.Max)
	if v != s.Value {
		s.Value = v
		s.changed = true
	}
}

func (s *Slider) contains(x, y float64) bool {
	return x >= s.X && x <= s.X+s.W && y >= s.Y && y <= s.Y+s.H
}

func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 90, G: 170, B: 220, A: 255}, true)

	format := s.Format
	if format == "" {
		format = "%.2f"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(format, s.Value), int(s.X+s.W-50), int(s.Y-15))
}

func (s *Slider) GetHeight() float64 {
	return s.H + 25 // label line above the bar
}

func (s *Slider) SetY(y float64) {
	s.Y = y
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
