package components

import (
	"xray-simulator/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// MetricsPanel shows the derived dose, quality labels and settings summary.
type MetricsPanel struct {
	container  *fyne.Container
	brightness *widget.Label
	contrast   *widget.Label
	noise      *widget.Label
	dose       *widget.Label
	settings   *widget.Label
}

func NewMetricsPanel() *MetricsPanel {
	mp := &MetricsPanel{
		brightness: widget.NewLabel(""),
		contrast:   widget.NewLabel(""),
		noise:      widget.NewLabel(""),
		dose:       widget.NewLabel(""),
		settings:   widget.NewLabel(""),
	}
	mp.settings.Wrapping = fyne.TextWrapWord

	mp.container = container.NewVBox(
		widget.NewRichTextFromMarkdown("**Image Quality**"),
		widget.NewForm(
			widget.NewFormItem("Brightness", mp.brightness),
			widget.NewFormItem("Contrast", mp.contrast),
			widget.NewFormItem("Noise", mp.noise),
			widget.NewFormItem("Dose", mp.dose),
		),
		widget.NewLabel("Current Settings"),
		mp.settings,
	)
	mp.SetParameters(models.DefaultParameters())
	return mp
}

// SetParameters refreshes every label from p.
func (mp *MetricsPanel) SetParameters(p models.Parameters) {
	labels := p.Labels()
	mp.brightness.SetText(labels.Brightness)
	mp.contrast.SetText(labels.Contrast)
	mp.noise.SetText(labels.Noise)
	mp.dose.SetText(p.FormatDose())
	mp.settings.SetText(p.Summary())
}

func (mp *MetricsPanel) GetContainer() *fyne.Container {
	return mp.container
}
