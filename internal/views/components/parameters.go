package components

import (
	"xray-simulator/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var parameterTitles = map[string]string{
	models.ParamKV:     "Tube Voltage (kV)",
	models.ParamMA:     "Tube Current (mA)",
	models.ParamTime:   "Exposure Time (s)",
	models.ParamFilter: "Filtration (mm Al)",
}

type parameterControl struct {
	slider *widget.Slider
	value  *widget.Label
}

// ParameterPanel shows one slider per exposure parameter.
type ParameterPanel struct {
	container *fyne.Container
	controls  map[string]*parameterControl

	// set while the panel mirrors store values into the sliders
	syncing bool

	parameterChangeHandler func(string, float64)
}

// NewParameterPanel creates the panel populated with the default parameters.
func NewParameterPanel() *ParameterPanel {
	pp := &ParameterPanel{
		controls: make(map[string]*parameterControl, len(models.ParameterNames)),
	}
	pp.createComponents()
	pp.buildLayout()
	pp.SetParameters(models.DefaultParameters())
	return pp
}

func (pp *ParameterPanel) createComponents() {
	for _, name := range models.ParameterNames {
		r := models.Ranges[name]
		slider := widget.NewSlider(r.Min, r.Max)
		slider.Step = r.Step
		slider.OnChanged = func(v float64) {
			pp.onSliderChanged(name, v)
		}

		pp.controls[name] = &parameterControl{
			slider: slider,
			value:  widget.NewLabel(""),
		}
	}
}

func (pp *ParameterPanel) buildLayout() {
	rows := []fyne.CanvasObject{widget.NewRichTextFromMarkdown("**Exposure Parameters**")}
	for _, name := range models.ParameterNames {
		c := pp.controls[name]
		rows = append(rows,
			container.NewBorder(nil, nil, widget.NewLabel(parameterTitles[name]), c.value),
			c.slider,
		)
	}
	pp.container = container.NewVBox(rows...)
}

func (pp *ParameterPanel) onSliderChanged(name string, v float64) {
	if pp.syncing {
		return
	}
	v = models.Ranges[name].Snap(v)
	if pp.parameterChangeHandler != nil {
		pp.parameterChangeHandler(name, v)
	}
}

// SetParameterChangeHandler sets the handler for slider changes
func (pp *ParameterPanel) SetParameterChangeHandler(handler func(string, float64)) {
	pp.parameterChangeHandler = handler
}

// SetParameters moves the sliders and value labels to p without firing the
// change handler.
func (pp *ParameterPanel) SetParameters(p models.Parameters) {
	pp.syncing = true
	defer func() { pp.syncing = false }()

	for _, name := range models.ParameterNames {
		c := pp.controls[name]
		v, _ := p.Get(name)
		if c.slider.Value != v {
			c.slider.SetValue(v)
		}
		c.value.SetText(p.FormatValue(name))
	}
}

func (pp *ParameterPanel) GetContainer() *fyne.Container {
	return pp.container
}
