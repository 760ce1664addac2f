package thermo

import (
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// SensorReader turns raw capability reads into Readings. Callers never see
// a fault: NaN values and read errors are logged and replaced by Fallback.
type SensorReader struct {
	mu      sync.Mutex
	sensor  Sensor
	state   *DisplayState
	log     logrus.FieldLogger
	onFault func(Quantity)
}

type ReaderOption func(*SensorReader)

func WithReaderLogger(l logrus.FieldLogger) ReaderOption {
	return func(r *SensorReader) { r.log = l }
}

// WithFaultHook registers a callback run on every masked sensor fault.
func WithFaultHook(fn func(Quantity)) ReaderOption {
	return func(r *SensorReader) { r.onFault = fn }
}

// NewSensorReader initializes the sensor once. A failing Begin is only
// logged; subsequent reads will fault and fall back.
func NewSensorReader(sensor Sensor, state *DisplayState, opts ...ReaderOption) *SensorReader {
	r := &SensorReader{
		sensor: sensor,
		state:  state,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := sensor.Begin(); err != nil {
		r.log.Warnf("sensor init: %s", err)
	}
	return r
}

func (r *SensorReader) ReadTemperature() float64 {
	r.mu.Lock()
	value, err := r.sensor.ReadTemperature()
	r.mu.Unlock()

	value = r.validate(Temperature, value, err)
	r.state.SetTemperature(value)
	return value
}

// ReadHumidity returns the unrounded humidity; only the display copy is rounded.
func (r *SensorReader) ReadHumidity() float64 {
	r.mu.Lock()
	value, err := r.sensor.ReadHumidity()
	r.mu.Unlock()

	value = r.validate(Humidity, value, err)
	r.state.SetHumidity(value)
	return value
}

// Read dispatches on the quantity.
func (r *SensorReader) Read(q Quantity) float64 {
	if q == Humidity {
		return r.ReadHumidity()
	}
	return r.ReadTemperature()
}

func (r *SensorReader) validate(q Quantity, value float64, err error) float64 {
	switch {
	case err != nil:
		r.log.WithField("quantity", q).Errorf("failed to read %s: %s", q, err)
	case math.IsNaN(value):
		r.log.WithField("quantity", q).Errorf("failed to read %s: sensor returned NaN", q)
	case math.IsInf(value, 0):
		r.log.WithField("quantity", q).Errorf("failed to read %s: sensor returned %v", q, value)
	default:
		return value
	}

	if r.onFault != nil {
		r.onFault(q)
	}
	return Fallback
}
