package xray

import (
	"context"
	"fmt"
	"image"
	"time"

	"xray-simulator/internal/logger"
	"xray-simulator/internal/models"
)

// Frame is one rendered viewport.
type Frame struct {
	Image        *image.NRGBA
	Placeholder  bool
	Coefficients Coefficients
	Duration     time.Duration
}

// Engine renders frames. It holds no image state: every call recomposites
// from the pristine source it is given.
type Engine struct {
	tinter Tinter
	logger logger.Logger
}

func NewEngine(tinter Tinter, log logger.Logger) *Engine {
	if tinter == nil {
		tinter = NewGoTinter(0)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{tinter: tinter, logger: log}
}

func (e *Engine) TinterName() string {
	return e.tinter.Name()
}

// Render produces the viewport buffer for size. A nil source yields the
// placeholder without running the pixel transform.
func (e *Engine) Render(
	ctx context.Context,
	src image.Image,
	params models.Parameters,
	view models.ViewTransform,
	size image.Point,
) (*Frame, error) {
	start := time.Now()

	if src == nil {
		return &Frame{
			Image:       Placeholder(size.X, size.Y),
			Placeholder: true,
			Duration:    time.Since(start),
		}, nil
	}

	if size.X <= 0 || size.Y <= 0 {
		return &Frame{Image: image.NewNRGBA(image.Rectangle{}), Duration: time.Since(start)}, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	if !Composite(dst, src, view) {
		e.logger.Debug("Source not drawn", map[string]interface{}{
			"source_bounds": src.Bounds().String(),
			"zoom":          view.Zoom,
		})
	}

	coeffs := NewCoefficients(params)
	if err := e.tinter.Tint(ctx, dst, coeffs); err != nil {
		return nil, fmt.Errorf("tint with %s failed: %w", e.tinter.Name(), err)
	}

	frame := &Frame{
		Image:        dst,
		Coefficients: coeffs,
		Duration:     time.Since(start),
	}

	e.logger.Debug("Frame rendered", map[string]interface{}{
		"width":       size.X,
		"height":      size.Y,
		"exposure":    coeffs.Exposure,
		"contrast":    coeffs.Contrast,
		"filter":      coeffs.FilterEffect,
		"duration_ms": frame.Duration.Milliseconds(),
	})
	return frame, nil
}
