package models

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
)

// ErrLoadInProgress is returned when a load is requested while another one
// has not completed.
var ErrLoadInProgress = errors.New("image load already in progress")

// LoadResult is the outcome of an asynchronous image load: either Image is
// set, or Err explains the failure.
type LoadResult struct {
	LoadID string
	Origin ImageOrigin
	Image  *ImageData
	Err    error
}

func Loaded(loadID string, img *ImageData) LoadResult {
	return LoadResult{LoadID: loadID, Origin: img.Origin, Image: img}
}

func Failed(loadID string, origin ImageOrigin, err error) LoadResult {
	return LoadResult{LoadID: loadID, Origin: origin, Err: err}
}

func (r LoadResult) OK() bool {
	return r.Err == nil && r.Image != nil
}

// LoadState represents the current state of image loading
type LoadState struct {
	IsActive  bool
	LoadID    string
	Origin    ImageOrigin
	StartTime time.Time
}

// LoadStateRepository tracks the single in-flight load.
type LoadStateRepository struct {
	mu     sync.RWMutex
	state  LoadState
	cancel context.CancelFunc
}

func NewLoadStateRepository() *LoadStateRepository {
	return &LoadStateRepository{}
}

// TryStart marks a load as active and returns its id, or ErrLoadInProgress
// if one is already running. cancel aborts the new load.
func (r *LoadStateRepository) TryStart(origin ImageOrigin, cancel context.CancelFunc) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.IsActive {
		return "", ErrLoadInProgress
	}

	id := uuid.Must(uuid.NewV4()).String()
	r.state = LoadState{
		IsActive:  true,
		LoadID:    id,
		Origin:    origin,
		StartTime: time.Now(),
	}
	r.cancel = cancel
	return id, nil
}

// Complete clears the active load if id still matches it.
func (r *LoadStateRepository) Complete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.state.IsActive || r.state.LoadID != id {
		return false
	}
	r.state.IsActive = false
	r.cancel = nil
	return true
}

// Cancel aborts the active load, if any.
func (r *LoadStateRepository) Cancel() {
	r.mu.RLock()
	cancel := r.cancel
	r.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
}

func (r *LoadStateRepository) GetState() LoadState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *LoadStateRepository) IsLoading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsActive
}
