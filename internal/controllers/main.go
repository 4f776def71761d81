package controllers

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"xray-simulator/internal/logger"
	"xray-simulator/internal/models"
	"xray-simulator/internal/services"
	"xray-simulator/internal/views"
)

// Status texts shown in the image status label.
const (
	StatusUploading     = "Loading..."
	StatusUploaded      = "Custom Image Loaded"
	StatusUploadFailed  = "Error loading image."
	StatusSampleLoading = "Loading sample..."
	StatusSampleLoaded  = "Sample Loaded Successfully"
	StatusSampleFailed  = "Error loading sample."
	StatusBusy          = "Image load already in progress"

	SampleFailedMessage = "Sample image failed to load. Please upload a local file."
)

// View is the part of the main view the controller drives.
type View interface {
	SetHandlers(h views.Handlers)
	ShowParameters(p models.Parameters)
	UpdateStatus(status string)
	SetImageInfo(img *models.ImageData)
	RefreshCanvas()
	ShowError(title string, err error)
}

// MainController orchestrates the application using MVC pattern
type MainController struct {
	// Services
	imageService  *services.ImageService
	renderService *services.RenderService
	loader        *services.Loader

	// Models/Repositories
	imageRepo *models.ImageRepository
	params    *models.ParameterStore
	viewState *models.ViewState

	mainView View
	logger   logger.Logger

	// State management
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
	pending       sync.WaitGroup
	lastImageLoad time.Time

	// Event handlers
	eventHandlers map[string][]EventHandler
	eventMu       sync.RWMutex
}

// EventHandler represents a function that handles application events
type EventHandler func(data interface{}) error

// NewMainController creates a new main controller
func NewMainController(
	imageService *services.ImageService,
	renderService *services.RenderService,
	loader *services.Loader,
	imageRepo *models.ImageRepository,
	params *models.ParameterStore,
	viewState *models.ViewState,
	log logger.Logger,
) *MainController {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	controller := &MainController{
		imageService:  imageService,
		renderService: renderService,
		loader:        loader,
		imageRepo:     imageRepo,
		params:        params,
		viewState:     viewState,
		logger:        log,
		ctx:           ctx,
		cancel:        cancel,
		eventHandlers: make(map[string][]EventHandler),
	}

	controller.initializeEventHandlers()
	return controller
}

// SetMainView associates the main view with this controller and pushes the
// initial parameter state.
func (mc *MainController) SetMainView(view View) {
	mc.mu.Lock()
	mc.mainView = view
	mc.mu.Unlock()

	mc.setupViewEventHandlers()
	mc.pushParameters(mc.params.Snapshot())
}

func (mc *MainController) view() View {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.mainView
}

// ParameterChanged applies a slider change and redraws.
func (mc *MainController) ParameterChanged(name string, value float64) {
	p, err := mc.params.Set(name, value)
	if err != nil {
		mc.logger.Warning("rejected parameter change", map[string]interface{}{
			"parameter": name,
			"value":     value,
			"error":     err.Error(),
		})
		mc.pushParameters(p)
		return
	}

	mc.pushParameters(p)
	mc.refreshCanvas()
	mc.emitEvent("parameter_changed", p)
}

// UploadImage decodes a user supplied file in the background and makes it
// the source image. The reader is always closed.
func (mc *MainController) UploadImage(reader io.ReadCloser, name string) {
	fn := func(ctx context.Context) (*models.ImageData, error) {
		defer reader.Close()
		return mc.imageService.DecodeImage(ctx, reader, name, models.OriginUpload)
	}

	if !mc.startLoad(models.OriginUpload, fn, StatusUploading, StatusUploaded, func(err error) {
		mc.updateStatus(StatusUploadFailed)
		mc.handleError("Image load failed", err)
	}) {
		reader.Close()
	}
}

// LoadSample fetches the configured sample image in the background.
func (mc *MainController) LoadSample() {
	mc.startLoad(models.OriginSample, mc.imageService.FetchSample, StatusSampleLoading, StatusSampleLoaded, func(err error) {
		mc.updateStatus(StatusSampleFailed)
		mc.handleError(SampleFailedMessage, err)
	})
}

func (mc *MainController) startLoad(origin models.ImageOrigin, fn services.LoadFunc, loading, loaded string, onFailure func(error)) bool {
	results, err := mc.loader.Start(mc.ctx, origin, fn)
	if err != nil {
		if errors.Is(err, models.ErrLoadInProgress) {
			mc.updateStatus(StatusBusy)
		}
		mc.logger.Warning("load not started", map[string]interface{}{
			"origin": string(origin),
			"error":  err.Error(),
		})
		return false
	}

	mc.updateStatus(loading)

	mc.pending.Add(1)
	go func() {
		defer mc.pending.Done()

		res := <-results
		if !res.OK() {
			if errors.Is(res.Err, context.Canceled) && mc.ctx.Err() != nil {
				return
			}
			onFailure(res.Err)
			return
		}

		mc.mu.Lock()
		mc.lastImageLoad = time.Now()
		mc.mu.Unlock()

		if v := mc.view(); v != nil {
			v.SetImageInfo(res.Image)
		}
		mc.updateStatus(loaded)
		mc.refreshCanvas()
		mc.emitEvent("image_loaded", res.Image)
	}()
	return true
}

// ResetToDefaults restores the default parameters and the identity view.
func (mc *MainController) ResetToDefaults() {
	p := mc.params.Reset()
	mc.viewState.Reset()
	mc.pushParameters(p)
	mc.refreshCanvas()
}

// ResetView restores zoom 1 and zero pan.
func (mc *MainController) ResetView() {
	mc.viewState.Reset()
	mc.refreshCanvas()
}

func (mc *MainController) ZoomIn() {
	mc.viewState.ZoomIn()
	mc.refreshCanvas()
}

func (mc *MainController) ZoomOut() {
	mc.viewState.ZoomOut()
	mc.refreshCanvas()
}

func (mc *MainController) BeginPan() {
	mc.viewState.BeginDrag()
}

// Pan moves the image by a pointer delta in canvas pixels while a drag is
// active.
func (mc *MainController) Pan(dx, dy float64) {
	if mc.viewState.Drag(dx, dy) {
		mc.refreshCanvas()
	}
}

func (mc *MainController) EndPan() {
	mc.viewState.EndDrag()
}

// Render draws the current state at the given canvas size. It never
// returns nil so the raster always has something to show.
func (mc *MainController) Render(width, height int) image.Image {
	frame, err := mc.renderService.Render(mc.ctx, image.Pt(width, height))
	if err != nil {
		mc.logger.Error("render failed", err, map[string]interface{}{
			"width":  width,
			"height": height,
		})
		if last, lastErr := mc.renderService.LastFrame(); lastErr == nil {
			return last
		}
		return image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	}
	return frame.Image
}

// ExportImage writes the last rendered canvas as PNG and closes the writer.
func (mc *MainController) ExportImage(writer io.WriteCloser) error {
	err := mc.exportImage(writer)
	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		mc.updateStatus("Export failed")
		mc.handleError("Image export failed", err)
		return err
	}

	mc.updateStatus("Image exported")
	mc.logger.Info("image exported", nil)
	return nil
}

func (mc *MainController) exportImage(writer io.Writer) error {
	img, err := mc.renderService.LastFrame()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return mc.imageService.EncodePNG(writer, img)
}

// GetApplicationState returns the current application state
func (mc *MainController) GetApplicationState() ApplicationState {
	mc.mu.RLock()
	lastLoad := mc.lastImageLoad
	mc.mu.RUnlock()

	return ApplicationState{
		HasSourceImage: mc.imageRepo.HasSourceImage(),
		IsLoading:      mc.loader.IsLoading(),
		Parameters:     mc.params.Snapshot(),
		View:           mc.viewState.Transform(),
		Backend:        mc.renderService.BackendName(),
		LastImageLoad:  lastLoad,
	}
}

// ApplicationState represents the current state of the application
type ApplicationState struct {
	HasSourceImage bool
	IsLoading      bool
	Parameters     models.Parameters
	View           models.ViewTransform
	Backend        string
	LastImageLoad  time.Time
}

// setupViewEventHandlers connects view events to controller methods
func (mc *MainController) setupViewEventHandlers() {
	v := mc.view()
	if v == nil {
		return
	}

	v.SetHandlers(views.Handlers{
		ParameterChanged: mc.ParameterChanged,
		Upload:           mc.UploadImage,
		LoadSample:       mc.LoadSample,
		Reset:            mc.ResetToDefaults,
		Export: func(w io.WriteCloser) {
			_ = mc.ExportImage(w)
		},
		ZoomIn:    mc.ZoomIn,
		ZoomOut:   mc.ZoomOut,
		ResetView: mc.ResetView,
		BeginPan:  mc.BeginPan,
		Pan:       mc.Pan,
		EndPan:    mc.EndPan,
		Render:    mc.Render,
	})
}

func (mc *MainController) pushParameters(p models.Parameters) {
	if v := mc.view(); v != nil {
		v.ShowParameters(p)
	}
}

func (mc *MainController) updateStatus(status string) {
	if v := mc.view(); v != nil {
		v.UpdateStatus(status)
	}
}

func (mc *MainController) refreshCanvas() {
	if v := mc.view(); v != nil {
		v.RefreshCanvas()
	}
}

// Event system methods

// initializeEventHandlers sets up default event handlers
func (mc *MainController) initializeEventHandlers() {
	mc.addEventListener("image_loaded", mc.onImageLoaded)
	mc.addEventListener("parameter_changed", mc.onParameterChanged)
}

// AddEventListener registers an extra handler for an event type.
func (mc *MainController) AddEventListener(eventType string, handler EventHandler) {
	mc.addEventListener(eventType, handler)
}

func (mc *MainController) addEventListener(eventType string, handler EventHandler) {
	mc.eventMu.Lock()
	defer mc.eventMu.Unlock()
	mc.eventHandlers[eventType] = append(mc.eventHandlers[eventType], handler)
}

// emitEvent runs every handler for the event type in order.
func (mc *MainController) emitEvent(eventType string, data interface{}) {
	mc.eventMu.RLock()
	handlers := append([]EventHandler(nil), mc.eventHandlers[eventType]...)
	mc.eventMu.RUnlock()

	for _, h := range handlers {
		if err := h(data); err != nil {
			mc.logger.Error("event handler failed", err, map[string]interface{}{
				"event": eventType,
			})
		}
	}
}

func (mc *MainController) onImageLoaded(data interface{}) error {
	img, ok := data.(*models.ImageData)
	if !ok {
		return fmt.Errorf("invalid data type for image_loaded event")
	}

	mc.logger.Info("source image loaded", map[string]interface{}{
		"id":     img.ID,
		"origin": string(img.Origin),
		"source": img.Source,
		"width":  img.Width,
		"height": img.Height,
		"format": img.Format,
	})
	return nil
}

func (mc *MainController) onParameterChanged(data interface{}) error {
	p, ok := data.(models.Parameters)
	if !ok {
		return fmt.Errorf("invalid data type for parameter_changed event")
	}

	mc.logger.Debug("parameters changed", map[string]interface{}{
		"summary": p.Summary(),
		"dose":    p.DoseEstimate(),
	})
	return nil
}

// handleError reports an error to the log and the user.
func (mc *MainController) handleError(title string, err error) {
	mc.logger.Error(title, err, nil)
	if v := mc.view(); v != nil {
		v.ShowError(title, err)
	}
}

// Wait blocks until background loads have reported back.
func (mc *MainController) Wait() {
	mc.pending.Wait()
}

// Shutdown cancels in-flight work, waits for it to finish and releases the
// source image.
func (mc *MainController) Shutdown() {
	mc.loader.Cancel()
	mc.cancel()
	mc.pending.Wait()
	mc.imageRepo.Clear()
}
