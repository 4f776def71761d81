package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar represents the main application toolbar
type Toolbar struct {
	container *fyne.Container

	uploadButton    *widget.Button
	sampleButton    *widget.Button
	resetButton     *widget.Button
	exportButton    *widget.Button
	zoomInButton    *widget.Button
	zoomOutButton   *widget.Button
	resetViewButton *widget.Button

	// Event handlers
	uploadHandler    func()
	sampleHandler    func()
	resetHandler     func()
	exportHandler    func()
	zoomInHandler    func()
	zoomOutHandler   func()
	resetViewHandler func()
}

// NewToolbar creates a new toolbar component
func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.createComponents()
	toolbar.buildLayout()
	return toolbar
}

func (t *Toolbar) createComponents() {
	t.uploadButton = widget.NewButtonWithIcon("Upload Image", theme.UploadIcon(), func() { call(t.uploadHandler) })
	t.uploadButton.Importance = widget.HighImportance

	t.sampleButton = widget.NewButtonWithIcon("Load Sample", theme.DownloadIcon(), func() { call(t.sampleHandler) })
	t.sampleButton.Importance = widget.HighImportance

	t.resetButton = widget.NewButtonWithIcon("Reset to Defaults", theme.MediaReplayIcon(), func() { call(t.resetHandler) })
	t.exportButton = widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() { call(t.exportHandler) })

	t.zoomInButton = widget.NewButtonWithIcon("", theme.ZoomInIcon(), func() { call(t.zoomInHandler) })
	t.zoomOutButton = widget.NewButtonWithIcon("", theme.ZoomOutIcon(), func() { call(t.zoomOutHandler) })
	t.resetViewButton = widget.NewButtonWithIcon("Reset View", theme.ZoomFitIcon(), func() { call(t.resetViewHandler) })
}

func (t *Toolbar) buildLayout() {
	t.container = container.NewHBox(
		t.uploadButton,
		t.sampleButton,
		widget.NewSeparator(),
		t.resetButton,
		t.exportButton,
		widget.NewSeparator(),
		t.zoomInButton,
		t.zoomOutButton,
		t.resetViewButton,
	)
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}

// SetUploadHandler sets the upload image handler
func (t *Toolbar) SetUploadHandler(handler func()) {
	t.uploadHandler = handler
}

// SetSampleHandler sets the load sample handler
func (t *Toolbar) SetSampleHandler(handler func()) {
	t.sampleHandler = handler
}

// SetResetHandler sets the reset to defaults handler
func (t *Toolbar) SetResetHandler(handler func()) {
	t.resetHandler = handler
}

// SetExportHandler sets the export handler
func (t *Toolbar) SetExportHandler(handler func()) {
	t.exportHandler = handler
}

func (t *Toolbar) SetZoomInHandler(handler func()) {
	t.zoomInHandler = handler
}

func (t *Toolbar) SetZoomOutHandler(handler func()) {
	t.zoomOutHandler = handler
}

func (t *Toolbar) SetResetViewHandler(handler func()) {
	t.resetViewHandler = handler
}

// GetContainer returns the toolbar container
func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
