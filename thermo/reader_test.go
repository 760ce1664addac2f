package thermo

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestReaderTemperature(t *testing.T) {
	logger, hook := test.NewNullLogger()
	state := NewDisplayState()
	r := NewSensorReader(&fakeSensor{temps: []float64{23.456}}, state, WithReaderLogger(logger))

	if got := r.ReadTemperature(); got != 23.456 {
		t.Errorf("ReadTemperature: got %v, want 23.456", got)
	}
	if temp, _ := state.Snapshot(); temp != 23.456 {
		t.Errorf("state temperature: got %v, want 23.456", temp)
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("unexpected log entries: %d", len(hook.AllEntries()))
	}
}

func TestReaderFallback(t *testing.T) {
	tests := []struct {
		name   string
		sensor *fakeSensor
		q      Quantity
	}{
		{"temperature NaN", &fakeSensor{temps: []float64{math.NaN()}}, Temperature},
		{"humidity NaN", &fakeSensor{humids: []float64{math.NaN()}}, Humidity},
		{"temperature +Inf", &fakeSensor{temps: []float64{math.Inf(1)}}, Temperature},
		{"humidity -Inf", &fakeSensor{humids: []float64{math.Inf(-1)}}, Humidity},
		{"temperature error", &fakeSensor{temps: []float64{21}, err: errBus}, Temperature},
		{"humidity error", &fakeSensor{humids: []float64{40}, err: errBus}, Humidity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			var faults []Quantity
			state := NewDisplayState()
			state.SetTemperature(10)
			state.SetHumidity(10)
			r := NewSensorReader(tt.sensor, state,
				WithReaderLogger(logger),
				WithFaultHook(func(q Quantity) { faults = append(faults, q) }))

			if got := r.Read(tt.q); got != Fallback {
				t.Errorf("Read(%s): got %v, want %v", tt.q, got, Fallback)
			}

			temp, humid := state.Snapshot()
			if tt.q == Temperature && temp != 99.0 {
				t.Errorf("state temperature: got %v, want 99", temp)
			}
			if tt.q == Humidity && humid != 99 {
				t.Errorf("state humidity: got %v, want 99", humid)
			}

			entry := hook.LastEntry()
			if entry == nil || entry.Level != logrus.ErrorLevel {
				t.Fatalf("expected an error diagnostic, got %v", entry)
			}
			if entry.Data["quantity"] != tt.q {
				t.Errorf("diagnostic quantity: got %v, want %v", entry.Data["quantity"], tt.q)
			}
			if len(faults) != 1 || faults[0] != tt.q {
				t.Errorf("fault hook: got %v", faults)
			}
		})
	}
}

func TestReaderHumidityRounding(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{47.8, 48},
		{47.2, 47},
		{47.5, 48},
		{0.4, 0},
		{100, 100},
	}
	for _, tt := range tests {
		logger, _ := test.NewNullLogger()
		state := NewDisplayState()
		r := NewSensorReader(&fakeSensor{humids: []float64{tt.raw}}, state, WithReaderLogger(logger))

		if got := r.ReadHumidity(); got != tt.raw {
			t.Errorf("ReadHumidity(%v): got %v, want unrounded %v", tt.raw, got, tt.raw)
		}
		if _, humid := state.Snapshot(); humid != tt.want {
			t.Errorf("state humidity for %v: got %d, want %d", tt.raw, humid, tt.want)
		}
	}
}

func TestReaderBeginFailureIsNotFatal(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := &fakeSensor{temps: []float64{20}, beginFn: func() error { return errBus }}
	r := NewSensorReader(s, NewDisplayState(), WithReaderLogger(logger))

	if s.begun != 1 {
		t.Errorf("Begin calls: got %d, want 1", s.begun)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel {
		t.Errorf("expected a warning for sensor init, got %v", entry)
	}
	if got := r.ReadTemperature(); got != 20 {
		t.Errorf("ReadTemperature: got %v, want 20", got)
	}
}

func TestDisplayStateDefaults(t *testing.T) {
	temp, humid := NewDisplayState().Snapshot()
	if temp != 99.0 || humid != 99 {
		t.Errorf("defaults: got %v/%d, want 99.0/99", temp, humid)
	}
}
