package thermo

import "fmt"

// Quantity names one of the two logical sensors.
type Quantity int

const (
	Temperature Quantity = iota
	Humidity
)

func (q Quantity) String() string {
	switch q {
	case Temperature:
		return "temperature"
	case Humidity:
		return "humidity"
	default:
		return fmt.Sprintf("quantity(%d)", int(q))
	}
}

// Fallback is substituted for any invalid sensor reading.
const Fallback = 99.0

type Sensor interface {
	Begin() error

	// units: degrees Celsius
	ReadTemperature() (float64, error)

	// units: % of relative Humidity
	ReadHumidity() (float64, error)
}

type Publisher interface {
	Publish(value float64)
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(value float64)

func (f PublisherFunc) Publish(value float64) {
	f(value)
}

type Tickable interface {
	Tick()
}
