package main

import (
	"fmt"
	"log"
	"net/http"
	"runtime"
	"time"

	"xray-simulator/internal/config"
	"xray-simulator/internal/controllers"
	"xray-simulator/internal/logger"
	"xray-simulator/internal/models"
	"xray-simulator/internal/opencv"
	"xray-simulator/internal/services"
	"xray-simulator/internal/shutdown"
	"xray-simulator/internal/views"
	"xray-simulator/internal/xray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppName    = "X-Ray Simulator"
	AppID      = "com.imageprocessing.xray-simulator"
	AppVersion = "1.0.0"
)

// Application represents the main application using MVC architecture
type Application struct {
	// Core components
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger
	config  *config.Config

	// MVC Components
	controller *controllers.MainController
	view       *views.MainView

	// Services
	renderService *services.RenderService

	// Models/Repositories
	imageRepo *models.ImageRepository

	shutdown *shutdown.Manager
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	application, err := NewApplication(cfg)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	application.Run()
}

func newLogger(cfg *config.Config) logger.Logger {
	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		return logger.NewJSONLogger(level)
	}
	return logger.NewConsoleLogger(level)
}

// selectTinter returns the configured backend, falling back to the Go
// tinter when OpenCV is not compiled in.
func selectTinter(cfg *config.Config, log logger.Logger) xray.Tinter {
	if cfg.RenderBackend == config.BackendOpenCV {
		tinter, err := opencv.New(log.Component("opencv"))
		if err == nil {
			return tinter
		}
		log.Warning("OpenCV backend unavailable, using Go backend", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return xray.NewGoTinter(cfg.RenderWorkers)
}

// NewApplication creates and initializes the application using dependency injection
func NewApplication(cfg *config.Config) (*Application, error) {
	appLogger := newLogger(cfg)

	fyneApp := app.NewWithID(AppID)
	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})

	window := fyneApp.NewWindow(AppName)
	windowSize := fyne.NewSize(cfg.WindowWidth, cfg.WindowHeight)
	window.Resize(windowSize)
	window.CenterOnScreen()

	appLogger.Info("Application starting", map[string]interface{}{
		"version":     AppVersion,
		"window_size": fmt.Sprintf("%.0fx%.0f", windowSize.Width, windowSize.Height),
		"go_version":  runtime.Version(),
		"num_cpu":     runtime.NumCPU(),
		"log_level":   cfg.LogLevel,
		"backend":     cfg.RenderBackend,
	})

	// Initialize repositories/models
	imageRepo := models.NewImageRepository()
	loadState := models.NewLoadStateRepository()
	params := models.NewParameterStore()
	viewState := models.NewViewState()

	// Initialize services
	httpClient := &http.Client{Timeout: cfg.SampleTimeout}
	imageService := services.NewImageService(httpClient, cfg.SampleURL, appLogger.Component("image"))
	engine := xray.NewEngine(selectTinter(cfg, appLogger), appLogger.Component("engine"))
	renderService := services.NewRenderService(engine, imageRepo, params, viewState, appLogger.Component("render"))
	loader := services.NewLoader(imageRepo, loadState, cfg.SampleTimeout, appLogger.Component("loader"))

	// Initialize MVC components
	mainController := controllers.NewMainController(
		imageService, renderService, loader,
		imageRepo, params, viewState,
		appLogger.Component("controller"),
	)
	mainView := views.NewMainView(window, cfg.ExportFilename, imageService.GetSupportedExtensions())
	mainController.SetMainView(mainView)
	mainView.SetBackend(renderService.BackendName())

	application := &Application{
		fyneApp:       fyneApp,
		window:        window,
		logger:        appLogger,
		config:        cfg,
		controller:    mainController,
		view:          mainView,
		renderService: renderService,
		imageRepo:     imageRepo,
		shutdown:      shutdown.NewManager(appLogger.Component("shutdown")),
	}

	application.shutdown.Register("controller", mainController.Shutdown)
	application.setupWindowEvents()

	appLogger.Info("Application initialized successfully", map[string]interface{}{
		"components": []string{"models", "services", "controllers", "views"},
		"backend":    renderService.BackendName(),
	})

	return application, nil
}

// Run shows the window and blocks until the application quits.
func (app *Application) Run() {
	app.logger.Info("Starting application UI", nil)

	app.shutdown.Listen(func() {
		fyne.Do(app.fyneApp.Quit)
	})
	go app.startPerformanceMonitoring()

	app.window.ShowAndRun()
	app.shutdown.Shutdown()

	app.logger.Info("Application terminated successfully", nil)
}

func (app *Application) setupWindowEvents() {
	app.window.SetOnClosed(func() {
		app.logger.Info("Window closed, performing cleanup", nil)
		app.shutdown.Shutdown()
	})
}

func (app *Application) startPerformanceMonitoring() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			app.logPerformanceMetrics()
		case <-app.shutdown.Context().Done():
			return
		}
	}
}

func (app *Application) logPerformanceMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	renderStats := app.renderService.GetRenderStats()
	imageStats := app.imageRepo.GetImageStats()

	app.logger.Debug("Performance metrics", map[string]interface{}{
		"go_memory_mb":       memStats.Alloc / 1024 / 1024,
		"go_gc_runs":         memStats.NumGC,
		"frames_rendered":    renderStats.TotalRendered,
		"placeholder_frames": renderStats.Placeholders,
		"failed_renders":     renderStats.FailedRuns,
		"avg_render_time_ms": renderStats.AverageTime.Milliseconds(),
		"has_source_image":   imageStats.HasSource,
		"images_loaded":      imageStats.LoadedCount,
		"image_memory_mb":    imageStats.MemoryUsage / 1024 / 1024,
		"goroutine_count":    runtime.NumGoroutine(),
	})
}
