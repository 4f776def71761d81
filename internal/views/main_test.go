package views

import (
	"image"
	"testing"

	"xray-simulator/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func newTestView(t *testing.T) *MainView {
	t.Helper()
	test.NewTempApp(t)
	w := test.NewWindow(nil)
	t.Cleanup(w.Close)
	return NewMainView(w, "xray-simulator-output.png", []string{".png", ".jpg"})
}

func TestMainViewUpdates(t *testing.T) {
	mv := newTestView(t)

	mv.UpdateStatus("Sample Loaded Successfully")
	assert.Equal(t, "Sample Loaded Successfully", mv.statusBar.GetStatus())

	mv.ShowParameters(models.Parameters{KV: 100, MA: 200, Time: 0.1, Filter: 2.5})
	assert.NotNil(t, mv.GetContainer())
	assert.Same(t, mv.window, mv.GetWindow())
}

func TestMainViewForwardsGestures(t *testing.T) {
	mv := newTestView(t)

	var panned [2]float64
	var begun, ended, zoomed bool
	mv.SetHandlers(Handlers{
		BeginPan: func() { begun = true },
		Pan:      func(dx, dy float64) { panned[0] += dx; panned[1] += dy },
		EndPan:   func() { ended = true },
		ZoomIn:   func() { zoomed = true },
		Render: func(w, h int) image.Image {
			return image.NewNRGBA(image.Rect(0, 0, w, h))
		},
	})

	mv.canvas.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: 2, DY: 3}})
	mv.canvas.DragEnd()
	mv.canvas.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 1}})

	assert.True(t, begun)
	assert.True(t, ended)
	assert.True(t, zoomed)
	assert.Greater(t, panned[0], 0.0)
	assert.Greater(t, panned[1], 0.0)

	// ZoomOut is unset and must be ignored
	mv.canvas.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -1}})
	mv.RefreshCanvas()
}
