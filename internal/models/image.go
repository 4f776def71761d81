package models

import (
	"image"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
)

// ImageOrigin tells where a source image came from.
type ImageOrigin string

const (
	OriginUpload ImageOrigin = "upload"
	OriginSample ImageOrigin = "sample"
)

// ImageData represents a decoded source image with its metadata
type ImageData struct {
	ID       string
	Image    image.Image
	Width    int
	Height   int
	Format   string
	Origin   ImageOrigin
	Source   string
	FileSize int64
	LoadTime time.Time
}

// NewImageData wraps a decoded image, assigning it a fresh id.
func NewImageData(img image.Image, format string, origin ImageOrigin, source string, size int64) *ImageData {
	bounds := img.Bounds()
	return &ImageData{
		ID:       uuid.Must(uuid.NewV4()).String(),
		Image:    img,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   format,
		Origin:   origin,
		Source:   source,
		FileSize: size,
		LoadTime: time.Now(),
	}
}

// ImageRepository holds the current source image. The image is replaced whole
// on every successful load and never modified in place.
type ImageRepository struct {
	mu          sync.RWMutex
	source      *ImageData
	loadedCount int
}

// NewImageRepository creates a new image repository
func NewImageRepository() *ImageRepository {
	return &ImageRepository{}
}

// SetSourceImage replaces the current source image.
func (r *ImageRepository) SetSourceImage(img *ImageData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = img
	if img != nil {
		r.loadedCount++
	}
}

// GetSourceImage returns the current source image, or nil.
func (r *ImageRepository) GetSourceImage() *ImageData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

func (r *ImageRepository) HasSourceImage() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source != nil
}

// Clear drops the source image, returning to the placeholder state.
func (r *ImageRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = nil
}

// GetImageStats returns statistics about stored images
func (r *ImageRepository) GetImageStats() ImageStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := ImageStats{
		HasSource:   r.source != nil,
		LoadedCount: r.loadedCount,
	}
	if r.source != nil {
		stats.MemoryUsage = int64(r.source.Width * r.source.Height * 4)
		stats.Origin = r.source.Origin
	}
	return stats
}

// ImageStats contains statistics about the image repository
type ImageStats struct {
	HasSource   bool
	Origin      ImageOrigin
	LoadedCount int
	MemoryUsage int64
}
