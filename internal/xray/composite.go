package xray

import (
	"image"
	"math"

	"xray-simulator/internal/models"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Placement is where the source lands in the viewport, in viewport pixels.
type Placement struct {
	Scale  float64
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Place fits src into the viewport preserving aspect ratio, applies the zoom,
// and centres the result on the viewport centre shifted by the pan offsets.
func Place(src, viewport image.Point, view models.ViewTransform) (Placement, bool) {
	if src.X <= 0 || src.Y <= 0 || viewport.X <= 0 || viewport.Y <= 0 {
		return Placement{}, false
	}

	ratio := math.Min(float64(viewport.X)/float64(src.X), float64(viewport.Y)/float64(src.Y))
	scale := ratio * view.Zoom
	w := float64(src.X) * scale
	h := float64(src.Y) * scale
	cx := float64(viewport.X)/2 + view.OffsetX
	cy := float64(viewport.Y)/2 + view.OffsetY

	return Placement{
		Scale:  scale,
		Left:   cx - w/2,
		Top:    cy - h/2,
		Width:  w,
		Height: h,
	}, true
}

// Composite draws src over dst at the placement given by view. Pixels the
// source does not cover keep their existing value. dst holds straight alpha
// so the remap sees the same values a canvas readback would return.
func Composite(dst *image.NRGBA, src image.Image, view models.ViewTransform) bool {
	sb := src.Bounds()
	db := dst.Bounds()
	pl, ok := Place(sb.Size(), db.Size(), view)
	if !ok || pl.Scale <= 0 {
		return false
	}

	s2d := f64.Aff3{
		pl.Scale, 0, float64(db.Min.X) + pl.Left - pl.Scale*float64(sb.Min.X),
		0, pl.Scale, float64(db.Min.Y) + pl.Top - pl.Scale*float64(sb.Min.Y),
	}
	draw.ApproxBiLinear.Transform(dst, s2d, src, sb, draw.Over, nil)
	return true
}
