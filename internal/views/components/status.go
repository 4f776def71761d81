package components

import (
	"fmt"

	"xray-simulator/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const InitialStatus = "No image loaded"

// StatusBar displays application status and information
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	imageInfo   *widget.Label
	backendInfo *widget.Label
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	sb := &StatusBar{
		statusLabel: widget.NewLabel(InitialStatus),
		imageInfo:   widget.NewLabel("Image: --"),
		backendInfo: widget.NewLabel(""),
	}
	sb.container = container.NewHBox(
		sb.statusLabel,
		widget.NewSeparator(),
		sb.imageInfo,
		widget.NewSeparator(),
		sb.backendInfo,
	)
	return sb
}

// SetStatus updates the image status message
func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

// GetStatus returns the current status message
func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetImageInfo describes the current source image.
func (sb *StatusBar) SetImageInfo(img *models.ImageData) {
	if img == nil {
		sb.imageInfo.SetText("Image: --")
		return
	}
	sb.imageInfo.SetText(fmt.Sprintf("Image: %s %dx%d, %s",
		img.Source, img.Width, img.Height, img.Format))
}

// SetBackend shows which tint backend renders the canvas.
func (sb *StatusBar) SetBackend(name string) {
	sb.backendInfo.SetText("Backend: " + name)
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
