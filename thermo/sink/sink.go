package sink

import (
	log "github.com/sirupsen/logrus"

	"github.com/alepar/thermodisplay/thermo"
)

// Fanout publishes to every sink in order.
type Fanout []thermo.Publisher

func (f Fanout) Publish(value float64) {
	for _, p := range f {
		p.Publish(value)
	}
}

// Range is the consumer-side validation of a characteristic: values outside
// [Min, Max] are clamped before reaching Next.
type Range struct {
	Min, Max float64
	Next     thermo.Publisher
}

// TemperatureRange is the range accepted for current temperature.
func TemperatureRange(next thermo.Publisher) *Range {
	return &Range{Min: -40, Max: 80, Next: next}
}

func (r *Range) Publish(value float64) {
	switch {
	case value < r.Min:
		log.Warnf("value %v below %v, clamped", value, r.Min)
		value = r.Min
	case value > r.Max:
		log.Warnf("value %v above %v, clamped", value, r.Max)
		value = r.Max
	}
	r.Next.Publish(value)
}
