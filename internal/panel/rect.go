package panel

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

type rectF struct {
	x, y, w, h float64
}

// fillRoundedRect composites a rounded rectangle over dst. Coverage is
// computed per pixel from the signed distance to the rounded boundary, which
// gives a one-pixel antialiased edge.
func fillRoundedRect(dst *image.RGBA, r rectF, radius float64, col color.NRGBA) {
	if r.w <= 0 || r.h <= 0 {
		return
	}
	radius = math.Min(radius, math.Min(r.w/2, r.h/2))

	x0 := int(math.Floor(r.x))
	y0 := int(math.Floor(r.y))
	x1 := int(math.Ceil(r.x + r.w))
	y1 := int(math.Ceil(r.y + r.h))
	area := image.Rect(x0, y0, x1, y1).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}

	mask := image.NewAlpha(area)
	cx := r.x + r.w/2
	cy := r.y + r.h/2
	halfW := r.w/2 - radius
	halfH := r.h/2 - radius

	for y := area.Min.Y; y < area.Max.Y; y++ {
		py := float64(y) + 0.5
		for x := area.Min.X; x < area.Max.X; x++ {
			px := float64(x) + 0.5
			dx := math.Max(math.Abs(px-cx)-halfW, 0)
			dy := math.Max(math.Abs(py-cy)-halfH, 0)
			dist := math.Hypot(dx, dy) - radius
			coverage := math.Min(math.Max(0.5-dist, 0), 1)
			if coverage > 0 {
				mask.SetAlpha(x, y, color.Alpha{A: uint8(coverage*255 + 0.5)})
			}
		}
	}

	draw.DrawMask(dst, area, image.NewUniform(col), image.Point{}, mask, area.Min, draw.Over)
}
