package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"xray-simulator/internal/logger"
	"xray-simulator/internal/models"
	"xray-simulator/internal/xray"
)

// ErrNoFrame is returned by LastFrame before anything has been rendered.
var ErrNoFrame = errors.New("nothing has been rendered yet")

// RenderService renders the current application state. Each call
// recomposites from the repository's source image.
type RenderService struct {
	engine *xray.Engine
	images *models.ImageRepository
	params *models.ParameterStore
	view   *models.ViewState
	logger logger.Logger

	mu        sync.RWMutex
	last      *xray.Frame
	stats     RenderStats
	totalTime time.Duration
}

// RenderStats contains render performance statistics
type RenderStats struct {
	TotalRendered int
	Placeholders  int
	FailedRuns    int
	LastDuration  time.Duration
	AverageTime   time.Duration
	LastRenderAt  time.Time
}

func NewRenderService(
	engine *xray.Engine,
	images *models.ImageRepository,
	params *models.ParameterStore,
	view *models.ViewState,
	log logger.Logger,
) *RenderService {
	if log == nil {
		log = logger.NewNop()
	}
	return &RenderService{
		engine: engine,
		images: images,
		params: params,
		view:   view,
		logger: log,
	}
}

// Render produces a frame of the given viewport size.
func (rs *RenderService) Render(ctx context.Context, size image.Point) (*xray.Frame, error) {
	var src image.Image
	if data := rs.images.GetSourceImage(); data != nil {
		src = data.Image
	}

	frame, err := rs.engine.Render(ctx, src, rs.params.Snapshot(), rs.view.Transform(), size)

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if err != nil {
		rs.stats.FailedRuns++
		rs.logger.Error("Render failed", err, map[string]interface{}{
			"width":  size.X,
			"height": size.Y,
		})
		return nil, fmt.Errorf("render failed: %w", err)
	}

	rs.last = frame
	rs.stats.TotalRendered++
	if frame.Placeholder {
		rs.stats.Placeholders++
	}
	rs.totalTime += frame.Duration
	rs.stats.LastDuration = frame.Duration
	rs.stats.AverageTime = rs.totalTime / time.Duration(rs.stats.TotalRendered)
	rs.stats.LastRenderAt = time.Now()

	return frame, nil
}

// LastFrame returns the most recently rendered buffer.
func (rs *RenderService) LastFrame() (*image.NRGBA, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	if rs.last == nil {
		return nil, ErrNoFrame
	}
	return rs.last.Image, nil
}

// GetRenderStats returns render performance statistics
func (rs *RenderService) GetRenderStats() RenderStats {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.stats
}

func (rs *RenderService) BackendName() string {
	return rs.engine.TinterName()
}
