package views

import (
	"fmt"

	"xray-simulator/internal/models"
	"xray-simulator/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainView represents the main application view using MVC pattern
type MainView struct {
	// UI Components
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	canvas        *components.XrayCanvas
	paramPanel    *components.ParameterPanel
	metricsPanel  *components.MetricsPanel
	statusBar     *components.StatusBar

	exportFilename string
	extensions     []string

	// Event handlers - connected to controller
	handlers Handlers
}

// NewMainView creates a new main view. extensions limits the upload dialog,
// exportFilename pre-fills the save dialog.
func NewMainView(window fyne.Window, exportFilename string, extensions []string) *MainView {
	view := &MainView{
		window:         window,
		exportFilename: exportFilename,
		extensions:     extensions,
	}

	view.initializeComponents()
	view.buildLayout()
	view.setupEventHandlers()

	return view
}

// initializeComponents creates all UI components
func (mv *MainView) initializeComponents() {
	mv.toolbar = components.NewToolbar()
	mv.canvas = components.NewXrayCanvas()
	mv.paramPanel = components.NewParameterPanel()
	mv.metricsPanel = components.NewMetricsPanel()
	mv.statusBar = components.NewStatusBar()
}

// buildLayout constructs the main layout
func (mv *MainView) buildLayout() {
	sidePanel := container.NewVScroll(container.NewVBox(
		mv.paramPanel.GetContainer(),
		widget.NewSeparator(),
		mv.metricsPanel.GetContainer(),
	))

	content := container.NewHSplit(sidePanel, mv.canvas)
	content.SetOffset(0.3)

	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		nil,
		content,
	)

	mv.window.SetContent(mv.mainContainer)
}

// setupEventHandlers connects internal component events
func (mv *MainView) setupEventHandlers() {
	mv.toolbar.SetUploadHandler(mv.showUploadDialog)
	mv.toolbar.SetSampleHandler(func() { call(mv.handlers.LoadSample) })
	mv.toolbar.SetResetHandler(func() { call(mv.handlers.Reset) })
	mv.toolbar.SetExportHandler(mv.showExportDialog)
	mv.toolbar.SetZoomInHandler(func() { call(mv.handlers.ZoomIn) })
	mv.toolbar.SetZoomOutHandler(func() { call(mv.handlers.ZoomOut) })
	mv.toolbar.SetResetViewHandler(func() { call(mv.handlers.ResetView) })

	mv.paramPanel.SetParameterChangeHandler(func(name string, value float64) {
		if mv.handlers.ParameterChanged != nil {
			mv.handlers.ParameterChanged(name, value)
		}
	})

	mv.canvas.SetPanHandlers(
		func() { call(mv.handlers.BeginPan) },
		func(dx, dy float64) {
			if mv.handlers.Pan != nil {
				mv.handlers.Pan(dx, dy)
			}
		},
		func() { call(mv.handlers.EndPan) },
	)
	mv.canvas.SetZoomHandlers(
		func() { call(mv.handlers.ZoomIn) },
		func() { call(mv.handlers.ZoomOut) },
	)
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}

// SetHandlers replaces the controller callbacks.
func (mv *MainView) SetHandlers(h Handlers) {
	mv.handlers = h
	mv.canvas.SetRenderHandler(h.Render)
}

func (mv *MainView) showUploadDialog() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mv.ShowError("File selection error", err)
			return
		}
		if reader == nil {
			return
		}
		if mv.handlers.Upload == nil {
			reader.Close()
			return
		}
		mv.handlers.Upload(reader, reader.URI().Name())
	}, mv.window)

	if len(mv.extensions) > 0 {
		open.SetFilter(storage.NewExtensionFileFilter(mv.extensions))
	}
	open.Show()
}

func (mv *MainView) showExportDialog() {
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mv.ShowError("File save error", err)
			return
		}
		if writer == nil {
			return
		}
		if mv.handlers.Export == nil {
			writer.Close()
			return
		}
		mv.handlers.Export(writer)
	}, mv.window)

	save.SetFileName(mv.exportFilename)
	save.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	save.Show()
}

// UI update methods - called by controller

// ShowParameters mirrors p into the sliders and the metrics panel.
func (mv *MainView) ShowParameters(p models.Parameters) {
	fyne.Do(func() {
		mv.paramPanel.SetParameters(p)
		mv.metricsPanel.SetParameters(p)
	})
}

// UpdateStatus updates the image status label
func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

// SetImageInfo updates image information display
func (mv *MainView) SetImageInfo(img *models.ImageData) {
	fyne.Do(func() {
		mv.statusBar.SetImageInfo(img)
	})
}

// SetBackend shows the active render backend.
func (mv *MainView) SetBackend(name string) {
	fyne.Do(func() {
		mv.statusBar.SetBackend(name)
	})
}

// RefreshCanvas regenerates the X-ray canvas.
func (mv *MainView) RefreshCanvas() {
	fyne.Do(func() {
		mv.canvas.Redraw()
	})
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		dialog.ShowError(fmt.Errorf("%s\n%w", title, err), mv.window)
	})
}

// GetWindow returns the main window
func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}

// GetContainer returns the main container
func (mv *MainView) GetContainer() *fyne.Container {
	return mv.mainContainer
}
