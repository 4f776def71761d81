package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()
	assert.Equal(t, Parameters{KV: 70, MA: 200, Time: 0.10, Filter: 2.5}, p)
	for _, name := range ParameterNames {
		v, ok := p.Get(name)
		require.True(t, ok)
		assert.True(t, Ranges[name].Contains(v), name)
	}
}

func TestDoseEstimate(t *testing.T) {
	tests := []struct {
		name   string
		params Parameters
		want   float64
	}{
		{name: "defaults", params: DefaultParameters(), want: 5.71},
		{name: "no filter", params: Parameters{KV: 70, MA: 100, Time: 1, Filter: 0}, want: 100},
		{name: "double kv", params: Parameters{KV: 140, MA: 100, Time: 0.5, Filter: 1}, want: 100},
		{name: "minimum", params: Parameters{KV: 40, MA: 10, Time: 0.01, Filter: 5}, want: 0.01},
		{name: "maximum", params: Parameters{KV: 150, MA: 500, Time: 2, Filter: 0}, want: 4591.84},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.params.DoseEstimate(), 1e-9)
		})
	}
}

func TestMAs(t *testing.T) {
	assert.InDelta(t, 20.0, DefaultParameters().MAs(), 1e-9)
}

func TestLabels(t *testing.T) {
	tests := []struct {
		name   string
		params Parameters
		want   QualityLabels
	}{
		{
			name:   "defaults",
			params: DefaultParameters(),
			want:   QualityLabels{Brightness: "Medium", Contrast: "Normal", Noise: "Low"},
		},
		{
			name:   "high kv",
			params: Parameters{KV: 91, MA: 200, Time: 0.1, Filter: 2.5},
			want:   QualityLabels{Brightness: "High", Contrast: "Normal", Noise: "Low"},
		},
		{
			name:   "kv at brightness boundary",
			params: Parameters{KV: 90, MA: 200, Time: 0.1, Filter: 2.5},
			want:   QualityLabels{Brightness: "Medium", Contrast: "Normal", Noise: "Low"},
		},
		{
			name:   "low kv low ma",
			params: Parameters{KV: 59, MA: 90, Time: 0.1, Filter: 2.5},
			want:   QualityLabels{Brightness: "Medium", Contrast: "High", Noise: "High"},
		},
		{
			name:   "boundaries are exclusive",
			params: Parameters{KV: 60, MA: 100, Time: 0.1, Filter: 2.5},
			want:   QualityLabels{Brightness: "Medium", Contrast: "Normal", Noise: "Low"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.params.Labels())
		})
	}
}

func TestSummaryAndFormatting(t *testing.T) {
	p := DefaultParameters()

	assert.Equal(t, "kV: 70, mA: 200, Time: 0.1s, Filter: 2.5mm", p.Summary())
	assert.Equal(t, "70", p.FormatValue(ParamKV))
	assert.Equal(t, "200", p.FormatValue(ParamMA))
	assert.Equal(t, "0.10", p.FormatValue(ParamTime))
	assert.Equal(t, "2.5", p.FormatValue(ParamFilter))
	assert.Equal(t, "", p.FormatValue("gain"))
	assert.Equal(t, "5.71 mGy", p.FormatDose())
}

func TestParametersWith(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		value   float64
		wantErr bool
	}{
		{name: "kv min", param: ParamKV, value: 40},
		{name: "kv max", param: ParamKV, value: 150},
		{name: "kv below", param: ParamKV, value: 39, wantErr: true},
		{name: "ma above", param: ParamMA, value: 510, wantErr: true},
		{name: "time min", param: ParamTime, value: 0.01},
		{name: "time zero", param: ParamTime, value: 0, wantErr: true},
		{name: "filter max", param: ParamFilter, value: 5},
		{name: "filter beyond", param: ParamFilter, value: 12.5, wantErr: true},
		{name: "nan", param: ParamKV, value: math.NaN(), wantErr: true},
		{name: "unknown", param: "gain", value: 1, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := DefaultParameters().With(tc.param, tc.value)
			if tc.wantErr {
				require.Error(t, err)
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tc.param, verr.Parameter)
				assert.Equal(t, DefaultParameters(), p)
				return
			}
			require.NoError(t, err)
			got, ok := p.Get(tc.param)
			require.True(t, ok)
			assert.Equal(t, tc.value, got)
		})
	}
}

func TestParameterStore(t *testing.T) {
	store := NewParameterStore()

	p, err := store.Set(ParamKV, 120)
	require.NoError(t, err)
	assert.Equal(t, 120.0, p.KV)

	_, err = store.Set(ParamMA, 5000)
	require.Error(t, err)
	assert.Equal(t, 200.0, store.Snapshot().MA)

	_, err = store.Set(ParamFilter, 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultParameters(), store.Reset())
	assert.Equal(t, DefaultParameters(), store.Snapshot())
}

func TestParameterRangeSnap(t *testing.T) {
	tests := []struct {
		name  string
		param string
		in    float64
		want  float64
	}{
		{name: "time float noise", param: ParamTime, in: 0.30000000000000004, want: 0.3},
		{name: "time rounds to step", param: ParamTime, in: 0.456, want: 0.46},
		{name: "ma step of ten", param: ParamMA, in: 204, want: 200},
		{name: "filter tenth", param: ParamFilter, in: 2.449, want: 2.4},
		{name: "clamped low", param: ParamKV, in: 12, want: 40},
		{name: "clamped high", param: ParamKV, in: 151.2, want: 150},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Ranges[tc.param].Snap(tc.in))
		})
	}
}
