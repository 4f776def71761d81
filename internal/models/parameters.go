package models

import (
	"fmt"
	"math"
	"strconv"
	"sync"
)

// Parameter names as used by the sliders and the store.
const (
	ParamKV     = "kv"
	ParamMA     = "ma"
	ParamTime   = "time"
	ParamFilter = "filter"
)

// ParameterNames lists the parameters in display order.
var ParameterNames = []string{ParamKV, ParamMA, ParamTime, ParamFilter}

// ParameterRange defines the valid range of a parameter and its slider step.
type ParameterRange struct {
	Min  float64
	Max  float64
	Step float64
}

// Contains reports whether v lies in the range, tolerating float rounding
// at the bounds.
func (r ParameterRange) Contains(v float64) bool {
	const eps = 1e-9
	return v >= r.Min-eps && v <= r.Max+eps
}

// Snap rounds v to the nearest step from Min and clamps it into the range.
func (r ParameterRange) Snap(v float64) float64 {
	if r.Step > 0 {
		v = r.Min + math.Round((v-r.Min)/r.Step)*r.Step
		// drop float noise such as 0.30000000000000004
		v = math.Round(v*1e6) / 1e6
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Ranges are the slider bounds for each parameter.
var Ranges = map[string]ParameterRange{
	ParamKV:     {Min: 40, Max: 150, Step: 1},
	ParamMA:     {Min: 10, Max: 500, Step: 10},
	ParamTime:   {Min: 0.01, Max: 2.0, Step: 0.01},
	ParamFilter: {Min: 0, Max: 5, Step: 0.1},
}

// Parameters are the four simulated exposure settings.
type Parameters struct {
	KV     float64
	MA     float64
	Time   float64
	Filter float64
}

// DefaultParameters returns kv=70, ma=200, time=0.10, filter=2.5.
func DefaultParameters() Parameters {
	return Parameters{KV: 70, MA: 200, Time: 0.10, Filter: 2.5}
}

// Get returns the named parameter.
func (p Parameters) Get(name string) (float64, bool) {
	switch name {
	case ParamKV:
		return p.KV, true
	case ParamMA:
		return p.MA, true
	case ParamTime:
		return p.Time, true
	case ParamFilter:
		return p.Filter, true
	}
	return 0, false
}

// With returns a copy with the named parameter replaced.
func (p Parameters) With(name string, value float64) (Parameters, error) {
	r, ok := Ranges[name]
	if !ok {
		return p, NewValidationError(name, value, "unknown parameter")
	}
	if math.IsNaN(value) || !r.Contains(value) {
		return p, NewValidationError(name, value,
			fmt.Sprintf("value outside [%g, %g]", r.Min, r.Max))
	}

	switch name {
	case ParamKV:
		p.KV = value
	case ParamMA:
		p.MA = value
	case ParamTime:
		p.Time = value
	case ParamFilter:
		p.Filter = value
	}
	return p, nil
}

// MAs is the tube current-time product.
func (p Parameters) MAs() float64 {
	return p.MA * p.Time
}

// DoseEstimate returns the estimated dose in mGy rounded to two decimals.
func (p Parameters) DoseEstimate() float64 {
	kvRatio := p.KV / 70
	dose := p.MAs() * kvRatio * kvRatio / (p.Filter + 1)
	return math.Round(dose*100) / 100
}

// QualityLabels are the qualitative image descriptors shown next to the dose.
type QualityLabels struct {
	Brightness string
	Contrast   string
	Noise      string
}

func (p Parameters) Labels() QualityLabels {
	labels := QualityLabels{Brightness: "Medium", Contrast: "Normal", Noise: "Low"}
	if p.KV > 90 {
		labels.Brightness = "High"
	}
	if p.KV < 60 {
		labels.Contrast = "High"
	}
	if p.MA < 100 {
		labels.Noise = "High"
	}
	return labels
}

// Summary renders the current settings line.
func (p Parameters) Summary() string {
	return fmt.Sprintf("kV: %s, mA: %s, Time: %ss, Filter: %smm",
		raw(p.KV), raw(p.MA), raw(p.Time), raw(p.Filter))
}

// FormatValue renders a parameter for its slider value label.
func (p Parameters) FormatValue(name string) string {
	v, ok := p.Get(name)
	if !ok {
		return ""
	}
	switch name {
	case ParamTime:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case ParamFilter:
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}

// FormatDose renders the dose estimate with its unit.
func (p Parameters) FormatDose() string {
	return strconv.FormatFloat(p.DoseEstimate(), 'f', 2, 64) + " mGy"
}

func raw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParameterStore holds the current parameters.
type ParameterStore struct {
	mu     sync.RWMutex
	params Parameters
}

func NewParameterStore() *ParameterStore {
	return &ParameterStore{params: DefaultParameters()}
}

// Snapshot returns a copy of the current parameters.
func (s *ParameterStore) Snapshot() Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Set updates one parameter. Out-of-range values are rejected and leave the
// store unchanged.
func (s *ParameterStore) Set(name string, value float64) (Parameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.params.With(name, value)
	if err != nil {
		return s.params, err
	}
	s.params = next
	return next, nil
}

// Reset restores the defaults.
func (s *ParameterStore) Reset() Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = DefaultParameters()
	return s.params
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string
	Value     interface{}
	Message   string
}

// NewValidationError creates a new validation error
func NewValidationError(parameter string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Message:   message,
	}
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for parameter '%s' with value '%v': %s",
		ve.Parameter, ve.Value, ve.Message)
}
