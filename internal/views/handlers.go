package views

import (
	"image"
	"io"
)

// Handlers are the controller callbacks the view invokes on user input.
// Nil entries are ignored.
type Handlers struct {
	ParameterChanged func(name string, value float64)
	Upload           func(reader io.ReadCloser, name string)
	LoadSample       func()
	Reset            func()
	Export           func(writer io.WriteCloser)
	ZoomIn           func()
	ZoomOut          func()
	ResetView        func()

	BeginPan func()
	Pan      func(dx, dy float64)
	EndPan   func()

	// Render draws the canvas at the given pixel size.
	Render func(width, height int) image.Image
}
