//go:build gocv

package opencv

import (
	"context"
	"fmt"
	"image"

	"xray-simulator/internal/logger"
	"xray-simulator/internal/xray"

	"gocv.io/x/gocv"
)

// Tinter runs the remap as cv::convertTo on the colour planes. The remap is
// expanded to its affine form v*gain + bias, so results can differ from the
// Go tinter by one level where the two-step form rounds differently.
type Tinter struct {
	logger logger.Logger
}

func New(log logger.Logger) (xray.Tinter, error) {
	if log == nil {
		log = logger.NewNop()
	}
	return &Tinter{logger: log}, nil
}

func (t *Tinter) Name() string {
	return "opencv"
}

func (t *Tinter) Tint(ctx context.Context, dst *image.NRGBA, c xray.Coefficients) error {
	if dst == nil {
		return fmt.Errorf("nil destination")
	}
	b := dst.Bounds()
	rows, cols := b.Dy(), b.Dx()
	if rows <= 0 || cols <= 0 {
		return nil
	}

	mat, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC4, packRows(dst))
	if err != nil {
		return fmt.Errorf("failed to create Mat: %w", err)
	}
	defer mat.Close()

	planes := gocv.Split(mat)
	defer func() {
		for i := range planes {
			planes[i].Close()
		}
	}()
	if len(planes) != 4 {
		return fmt.Errorf("unexpected channel count: %d", len(planes))
	}

	gain, bias := float32(c.Gain()), float32(c.Bias())
	for i := 0; i < 3; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		mapped := gocv.NewMat()
		planes[i].ConvertToWithParams(&mapped, gocv.MatTypeCV8U, gain, bias)
		planes[i].Close()
		planes[i] = mapped
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.Merge(planes, &out)

	unpackRows(dst, out.ToBytes())

	t.logger.Debug("Tinted with OpenCV", map[string]interface{}{
		"rows": rows,
		"cols": cols,
		"gain": gain,
		"bias": bias,
	})
	return nil
}

// packRows returns the pixels as one contiguous buffer, dropping any stride
// padding of sub-images.
func packRows(img *image.NRGBA) []byte {
	b := img.Bounds()
	width := b.Dx() * 4
	if img.Stride == width {
		return append([]byte(nil), img.Pix[:width*b.Dy()]...)
	}
	buf := make([]byte, 0, width*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		buf = append(buf, img.Pix[y*img.Stride:y*img.Stride+width]...)
	}
	return buf
}

// unpackRows writes data back into img. Fully transparent pixels are
// zeroed, matching the Go tinter.
func unpackRows(img *image.NRGBA, data []byte) {
	b := img.Bounds()
	width := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width]
		copy(row, data[y*width:(y+1)*width])
		for i := 0; i < len(row); i += 4 {
			if row[i+3] == 0 {
				row[i], row[i+1], row[i+2] = 0, 0, 0
			}
		}
	}
}
