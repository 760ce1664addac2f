// Package sink holds the consumers readings are published to.
package sink

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alepar/thermodisplay/thermo"
)

// Metrics exposed to Prometheus.
type Metrics struct {
	Temperature  *prometheus.GaugeVec
	Humidity     *prometheus.GaugeVec
	Updates      *prometheus.CounterVec
	SensorFaults *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Temperature: newGauge("thermo_temperature_celsius", "Air Temperature (units: degrees Celsius)"),
		Humidity:    newGauge("thermo_humidity_percent", "Humidity (units: % of relative Humidity)"),
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thermo_updates_total",
			Help: "Completed read, render, publish cycles.",
		}, []string{"quantity"}),
		SensorFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thermo_sensor_faults_total",
			Help: "Sensor reads replaced by the fallback value.",
		}, []string{"quantity"}),
	}
}

func newGauge(name string, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		[]string{"sensor"},
	)
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Temperature, m.Humidity, m.Updates, m.SensorFaults} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Gauge publishes one quantity of one sensor into its gauge and counts the update.
func (m *Metrics) Gauge(q thermo.Quantity, sensor string) thermo.Publisher {
	vec := m.Temperature
	if q == thermo.Humidity {
		vec = m.Humidity
	}
	gauge := vec.WithLabelValues(sensor)
	updates := m.Updates.WithLabelValues(q.String())
	return thermo.PublisherFunc(func(value float64) {
		gauge.Set(value)
		updates.Inc()
	})
}

// Fault matches the reader's fault hook.
func (m *Metrics) Fault(q thermo.Quantity) {
	m.SensorFaults.WithLabelValues(q.String()).Inc()
}
