package services

import (
	"context"
	"errors"
	"time"

	"xray-simulator/internal/logger"
	"xray-simulator/internal/models"
)

var errNoImage = errors.New("load returned no image")

// LoadFunc produces a decoded image. It must honour ctx cancellation.
type LoadFunc func(ctx context.Context) (*models.ImageData, error)

// Loader runs image loads asynchronously, one at a time. A successful load
// replaces the repository's source image before its result is delivered.
type Loader struct {
	repo    *models.ImageRepository
	state   *models.LoadStateRepository
	timeout time.Duration
	logger  logger.Logger
}

func NewLoader(repo *models.ImageRepository, state *models.LoadStateRepository, timeout time.Duration, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{
		repo:    repo,
		state:   state,
		timeout: timeout,
		logger:  log,
	}
}

// Start launches fn and returns a channel that receives exactly one result
// and is then closed. While a load is in flight Start returns
// models.ErrLoadInProgress.
func (l *Loader) Start(parent context.Context, origin models.ImageOrigin, fn LoadFunc) (<-chan models.LoadResult, error) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, l.timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	id, err := l.state.TryStart(origin, cancel)
	if err != nil {
		cancel()
		l.logger.Warning("Load rejected", map[string]interface{}{
			"origin":   string(origin),
			"inflight": string(l.state.GetState().Origin),
		})
		return nil, err
	}

	l.logger.Debug("Load started", map[string]interface{}{"load_id": id, "origin": string(origin)})

	results := make(chan models.LoadResult, 1)
	go func() {
		defer close(results)
		defer cancel()

		start := time.Now()
		img, err := fn(ctx)
		if err == nil && img == nil {
			err = errNoImage
		}

		var result models.LoadResult
		if err != nil {
			result = models.Failed(id, origin, err)
			l.logger.Error("Load failed", err, map[string]interface{}{
				"load_id": id,
				"origin":  string(origin),
			})
		} else {
			img.Origin = origin
			l.repo.SetSourceImage(img)
			result = models.Loaded(id, img)
			l.logger.Info("Load completed", map[string]interface{}{
				"load_id":     id,
				"origin":      string(origin),
				"image_id":    img.ID,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		}

		l.state.Complete(id)
		results <- result
	}()

	return results, nil
}

// Cancel aborts the in-flight load, if any.
func (l *Loader) Cancel() {
	l.state.Cancel()
}

func (l *Loader) IsLoading() bool {
	return l.state.IsLoading()
}
