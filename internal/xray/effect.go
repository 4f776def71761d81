// Package xray composites a source image into the viewport and applies the
// simulated exposure remap to every pixel.
package xray

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"

	"xray-simulator/internal/models"

	"golang.org/x/sync/errgroup"
)

// Midpoint is the fixed value the contrast stretch pivots around.
const Midpoint = 128

// Coefficients are the per-render scalars derived from the parameters.
type Coefficients struct {
	Exposure     float64
	Contrast     float64
	FilterEffect float64
}

// NewCoefficients derives exposure, contrast and filter attenuation.
// Contrast turns negative above 121 kV, which inverts the output about the
// midpoint. FilterEffect is floored at zero for filtration beyond 12.5 mm.
func NewCoefficients(p models.Parameters) Coefficients {
	return Coefficients{
		Exposure:     p.MA * p.Time * p.KV * p.KV / 60000,
		Contrast:     2.2 - p.KV/55,
		FilterEffect: math.Max(0, 1.0-p.Filter*0.08),
	}
}

// Map applies the remap to one channel value. Exposure and filtration scale
// first, then contrast stretches about the midpoint.
func (c Coefficients) Map(v uint8) uint8 {
	x := float64(v) * c.Exposure * c.FilterEffect
	x = (x-Midpoint)*c.Contrast + Midpoint
	return clampByte(x)
}

// Gain and Bias express Map as the single affine form v*Gain + Bias.
func (c Coefficients) Gain() float64 {
	return c.Exposure * c.FilterEffect * c.Contrast
}

func (c Coefficients) Bias() float64 {
	return Midpoint * (1 - c.Contrast)
}

// Table tabulates Map for every byte value.
func (c Coefficients) Table() *[256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = c.Map(uint8(i))
	}
	return &lut
}

// clampByte rounds half to even and saturates to [0,255].
func clampByte(x float64) uint8 {
	switch {
	case math.IsNaN(x), x <= 0:
		return 0
	case x >= 255:
		return 255
	}
	return uint8(math.RoundToEven(x))
}

// Tinter applies the remap in place to the straight (non-premultiplied) RGB
// channels of dst, leaving alpha untouched. Pixels with zero alpha carry no
// colour and stay zero.
type Tinter interface {
	Tint(ctx context.Context, dst *image.NRGBA, c Coefficients) error
	Name() string
}

// GoTinter maps rows in parallel bands.
type GoTinter struct {
	workers int
}

func NewGoTinter(workers int) *GoTinter {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &GoTinter{workers: workers}
}

func (t *GoTinter) Name() string {
	return "go"
}

func (t *GoTinter) Tint(ctx context.Context, dst *image.NRGBA, c Coefficients) error {
	if dst == nil {
		return fmt.Errorf("nil destination")
	}
	b := dst.Bounds()
	rows := b.Dy()
	if rows <= 0 || b.Dx() <= 0 {
		return nil
	}

	lut := c.Table()
	band := (rows + t.workers - 1) / t.workers

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for y0 := 0; y0 < rows; y0 += band {
		y1 := min(y0+band, rows)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tintRows(dst, lut, y0, y1)
			return nil
		})
	}
	return g.Wait()
}

// tintRows maps rows [y0,y1) relative to the image bounds.
func tintRows(dst *image.NRGBA, lut *[256]uint8, y0, y1 int) {
	width := dst.Bounds().Dx() * 4
	for y := y0; y < y1; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width]
		for i := 0; i < len(row); i += 4 {
			if row[i+3] == 0 {
				row[i], row[i+1], row[i+2] = 0, 0, 0
				continue
			}
			row[i] = lut[row[i]]
			row[i+1] = lut[row[i+1]]
			row[i+2] = lut[row[i+2]]
		}
	}
}
