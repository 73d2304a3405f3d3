// Package panel composes the selection surface: a horizontal row of
// application icons on a rounded dark slab, the selected entry highlighted.
// The panel renders complete ARGB frames and hands them to a FrameSink; the
// compositor-side surface binding (wl_shm buffer, layer shell) is an
// external collaborator and lives behind that sink.
package panel

import (
	"image"
	"image/color"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/waytab/waytab/internal/backend"
	"github.com/waytab/waytab/internal/switcher"
)

const (
	IconSize         = 77
	IconSpacing      = 22
	PanelPadding     = 14
	HighlightPadding = 24
	CornerRadius     = 19.2
	BorderWidth      = 1.0
)

var (
	borderColor    = color.NRGBA{R: 255, G: 255, B: 255, A: 36}
	slabColor      = color.NRGBA{R: 20, G: 20, B: 20, A: 220}
	highlightColor = color.NRGBA{R: 255, G: 255, B: 255, A: 28}
)

// LayoutSize returns the panel's logical size for a given entry count.
func LayoutSize(count int) (width, height int) {
	if count == 0 {
		return 0, 0
	}
	item := IconSize + HighlightPadding*2
	width = PanelPadding*2 + count*item + (count-1)*IconSpacing
	height = PanelPadding*2 + item
	return width, height
}

// FrameSink receives each composed frame together with the panel's top-left
// position on the focused output, in logical coordinates.
type FrameSink func(frame *image.RGBA, origin image.Point)

// Panel implements switcher.Presenter.
type Panel struct {
	sink      FrameSink
	events    chan switcher.Command
	closeOnce sync.Once

	entries  []switcher.Entry
	selected int
	scale    int
	width    int // logical
	height   int
	origin   image.Point
	frame    *image.RGBA
}

// New creates a panel. A nil sink discards frames, which keeps the session
// controller fully functional on compositors where no surface binding is
// wired up yet.
func New(sink FrameSink) *Panel {
	return &Panel{
		sink:   sink,
		events: make(chan switcher.Command, 4),
		scale:  1,
	}
}

func (p *Panel) Show(entries []switcher.Entry, selected int, output *backend.Output) error {
	p.entries = entries
	p.selected = selected
	p.width, p.height = LayoutSize(len(entries))
	p.scale = 1
	if output != nil {
		if output.Scale > 1 {
			p.scale = output.Scale
		}
		left := (output.Width - p.width) / 2
		top := (output.Height - p.height) / 2
		p.origin = image.Point{X: max(left, 0), Y: max(top, 0)}
	}

	p.render()
	p.emit()
	return nil
}

func (p *Panel) Redraw(selected int) {
	p.selected = selected
	p.render()
	p.emit()
}

func (p *Panel) Events() <-chan switcher.Command { return p.events }

// Input feeds a surface-originated command (keyboard on the panel surface,
// surface teardown) into the session.
func (p *Panel) Input(cmd switcher.Command) {
	select {
	case p.events <- cmd:
	default:
	}
}

// Close tears the surface down. The closed events channel tells the session
// the surface is gone.
func (p *Panel) Close() {
	p.closeOnce.Do(func() { close(p.events) })
}

// Frame returns the most recently composed frame.
func (p *Panel) Frame() *image.RGBA { return p.frame }

// Origin returns the panel's logical position on the focused output.
func (p *Panel) Origin() image.Point { return p.origin }

func (p *Panel) emit() {
	if p.sink != nil && p.frame != nil {
		p.sink(p.frame, p.origin)
	}
}

// render composes one frame at buffer resolution (logical size times the
// output scale).
func (p *Panel) render() {
	s := p.scale
	bufW, bufH := p.width*s, p.height*s
	if bufW == 0 || bufH == 0 {
		p.frame = nil
		return
	}
	frame := image.NewRGBA(image.Rect(0, 0, bufW, bufH))

	radius := CornerRadius * float64(s)
	fillRoundedRect(frame, rectF{0, 0, float64(bufW), float64(bufH)}, radius, borderColor)

	inset := BorderWidth * float64(s)
	inner := rectF{
		x: inset,
		y: inset,
		w: max(float64(bufW)-inset*2, 0),
		h: max(float64(bufH)-inset*2, 0),
	}
	fillRoundedRect(frame, inner, max(radius-inset, 0), slabColor)

	item := (IconSize + HighlightPadding*2) * s
	total := len(p.entries)*item + (len(p.entries)-1)*IconSpacing*s
	available := bufW - PanelPadding*2*s
	startX := PanelPadding*s + (available-total)/2
	if startX < 0 {
		startX = 0
	}
	iconY := bufH/2 - IconSize*s/2

	for idx, entry := range p.entries {
		itemX := startX + idx*(item+IconSpacing*s)
		if idx == p.selected {
			highlight := rectF{
				x: float64(itemX),
				y: float64(iconY - HighlightPadding*s),
				w: float64(item),
				h: float64(item),
			}
			fillRoundedRect(frame, highlight, radius*0.7, highlightColor)
		}

		iconX := itemX + HighlightPadding*s
		dst := image.Rect(iconX, iconY, iconX+IconSize*s, iconY+IconSize*s)
		xdraw.CatmullRom.Scale(frame, dst, entry.Icon, entry.Icon.Bounds(), xdraw.Over, nil)
	}

	p.frame = frame
}
