package components

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	CanvasMinWidth  = 480
	CanvasMinHeight = 360
)

// XrayCanvas is a raster that fills its container. Dragging pans and the
// scroll wheel zooms; the pixels come from the render handler.
type XrayCanvas struct {
	widget.BaseWidget

	raster   *fynecanvas.Raster
	dragging bool

	renderHandler   func(width, height int) image.Image
	beginPanHandler func()
	panHandler      func(dx, dy float64)
	endPanHandler   func()
	zoomInHandler   func()
	zoomOutHandler  func()
}

func NewXrayCanvas() *XrayCanvas {
	c := &XrayCanvas{}
	c.raster = fynecanvas.NewRaster(c.draw)
	c.ExtendBaseWidget(c)
	return c
}

func (c *XrayCanvas) draw(w, h int) image.Image {
	if c.renderHandler == nil || w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}
	return c.renderHandler(w, h)
}

func (c *XrayCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *XrayCanvas) MinSize() fyne.Size {
	return fyne.NewSize(CanvasMinWidth, CanvasMinHeight)
}

// Dragged converts the drag delta from device independent units to raster
// pixels before forwarding it.
func (c *XrayCanvas) Dragged(ev *fyne.DragEvent) {
	if !c.dragging {
		c.dragging = true
		if c.beginPanHandler != nil {
			c.beginPanHandler()
		}
	}
	if c.panHandler != nil {
		scale := c.pixelScale()
		c.panHandler(float64(ev.Dragged.DX)*scale, float64(ev.Dragged.DY)*scale)
	}
}

func (c *XrayCanvas) DragEnd() {
	c.dragging = false
	if c.endPanHandler != nil {
		c.endPanHandler()
	}
}

// Scrolled zooms in on wheel up and out on wheel down.
func (c *XrayCanvas) Scrolled(ev *fyne.ScrollEvent) {
	switch {
	case ev.Scrolled.DY > 0 && c.zoomInHandler != nil:
		c.zoomInHandler()
	case ev.Scrolled.DY < 0 && c.zoomOutHandler != nil:
		c.zoomOutHandler()
	}
}

func (c *XrayCanvas) pixelScale() float64 {
	app := fyne.CurrentApp()
	if app == nil {
		return 1
	}
	if cv := app.Driver().CanvasForObject(c); cv != nil {
		return float64(cv.Scale())
	}
	return 1
}

// Redraw regenerates the raster.
func (c *XrayCanvas) Redraw() {
	c.raster.Refresh()
}

func (c *XrayCanvas) SetRenderHandler(handler func(width, height int) image.Image) {
	c.renderHandler = handler
}

// SetPanHandlers wires the drag gesture.
func (c *XrayCanvas) SetPanHandlers(begin func(), pan func(dx, dy float64), end func()) {
	c.beginPanHandler = begin
	c.panHandler = pan
	c.endPanHandler = end
}

// SetZoomHandlers wires the scroll wheel.
func (c *XrayCanvas) SetZoomHandlers(zoomIn, zoomOut func()) {
	c.zoomInHandler = zoomIn
	c.zoomOutHandler = zoomOut
}
