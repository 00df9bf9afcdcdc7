package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// UIWidget is implemented by everything a UIPanel can stack.
type UIWidget interface {
	Update()
	Draw(screen *ebiten.Image)
	GetHeight() float64
	SetY(y float64)
}

type panelItem struct {
	label   string // drawn above the widget, empty for none
	section string // non empty for a section header
	widget  UIWidget
}

const sectionHeight = 25

// UIPanel stacks labelled widgets in sections and scrolls with the mouse wheel.
type UIPanel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	ScrollOffset  float64
	Hidden        bool

	BGColor     color.RGBA
	BorderColor color.RGBA

	items []panelItem
}

func NewUIPanel(title string, x, y, width, height float64) *UIPanel {
	return &UIPanel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

func (p *UIPanel) AddSection(title string) {
	p.items = append(p.items, panelItem{section: title})
}

func (p *UIPanel) AddSlider(label, key string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, 0, p.Width-20, key, min, max, value)
	p.items = append(p.items, panelItem{label: label, widget: s})
	return s
}

func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, 0, value)
	p.items = append(p.items, panelItem{label: label, widget: c})
	return c
}

func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.Width-20, label, onClick)
	p.items = append(p.items, panelItem{widget: b})
	return b
}

// Contains reports whether a screen point lies on the visible panel.
func (p *UIPanel) Contains(x, y int) bool {
	return !p.Hidden && float64(x) >= p.X && float64(x) <= p.X+p.Width &&
		float64(y) >= p.Y && float64(y) <= p.Y+p.Height
}

func (p *UIPanel) Update() {
	if p.Hidden {
		return
	}
	mx, my := ebiten.CursorPosition()
	if !p.Contains(mx, my) {
		return
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		p.ScrollOffset = clamp(p.ScrollOffset-dy*20, 0, max(0, p.contentHeight()-p.Height+40))
	}
	p.layout()
	for _, it := range p.items {
		if it.widget != nil {
			it.widget.Update()
		}
	}
}

// layout positions the widgets for the current scroll offset.
func (p *UIPanel) layout() {
	y := p.Y + 30 - p.ScrollOffset
	for _, it := range p.items {
		if it.widget == nil {
			y += sectionHeight
			continue
		}
		if it.label != "" {
			it.widget.SetY(y + 15)
		} else {
			it.widget.SetY(y)
		}
		y += it.widget.GetHeight()
	}
}

func (p *UIPanel) contentHeight() float64 {
	h := 30.0
	for _, it := range p.items {
		if it.widget == nil {
			h += sectionHeight
		} else {
			h += it.widget.GetHeight()
		}
	}
	return h
}

func (p *UIPanel) Draw(screen *ebiten.Image) {
	if p.Hidden {
		return
	}
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	p.layout()
	y := p.Y + 30 - p.ScrollOffset
	for _, it := range p.items {
		h := float64(sectionHeight)
		if it.widget != nil {
			h = it.widget.GetHeight()
		}
		// only what fits inside the panel
		if y >= p.Y+25 && y+h <= p.Y+p.Height {
			switch {
			case it.widget == nil:
				vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 20,
					color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
				ebitenutil.DebugPrintAt(screen, it.section, int(p.X+10), int(y+3))
			default:
				if it.label != "" {
					ebitenutil.DebugPrintAt(screen, it.label, int(p.X+10), int(y))
				}
				it.widget.Draw(screen)
			}
		}
		y += h
	}
}
