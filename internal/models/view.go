package models

import "sync"

// ZoomStep is the multiplicative factor applied per zoom click.
const ZoomStep = 1.1

// ViewTransform places the source image within the viewport.
type ViewTransform struct {
	Zoom    float64
	OffsetX float64
	OffsetY float64
}

func IdentityView() ViewTransform {
	return ViewTransform{Zoom: 1}
}

// ViewState owns the view transform and the drag gesture flag.
type ViewState struct {
	mu        sync.RWMutex
	transform ViewTransform
	dragging  bool
}

func NewViewState() *ViewState {
	return &ViewState{transform: IdentityView()}
}

func (vs *ViewState) Transform() ViewTransform {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.transform
}

func (vs *ViewState) ZoomIn() ViewTransform {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.transform.Zoom *= ZoomStep
	return vs.transform
}

func (vs *ViewState) ZoomOut() ViewTransform {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.transform.Zoom /= ZoomStep
	return vs.transform
}

// BeginDrag starts a pan gesture.
func (vs *ViewState) BeginDrag() {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.dragging = true
}

// Drag accumulates a pointer delta into the offsets. It is a no-op and
// returns false when no gesture is active.
func (vs *ViewState) Drag(dx, dy float64) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if !vs.dragging {
		return false
	}
	vs.transform.OffsetX += dx
	vs.transform.OffsetY += dy
	return true
}

func (vs *ViewState) EndDrag() {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.dragging = false
}

func (vs *ViewState) IsDragging() bool {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.dragging
}

// Reset returns to zoom 1 with no offset.
func (vs *ViewState) Reset() ViewTransform {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.transform = IdentityView()
	return vs.transform
}
