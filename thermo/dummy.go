package thermo

import (
	"math"
	"math/rand"
	"sync"
)

// DummySensor is a sensor mock for temperature and humidity.
// A FaultRate in (0, 1] makes that share of reads return NaN.
type DummySensor struct {
	FaultRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewDummySensor(seed int64, faultRate float64) *DummySensor {
	return &DummySensor{
		FaultRate: faultRate,
		rnd:       rand.New(rand.NewSource(seed)),
	}
}

func (d *DummySensor) Begin() error {
	return nil
}

func (d *DummySensor) ReadTemperature() (float64, error) {
	return d.sample(20, 10), nil
}

func (d *DummySensor) ReadHumidity() (float64, error) {
	return d.sample(40, 30), nil
}

func (d *DummySensor) sample(base, spread float64) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rnd == nil {
		d.rnd = rand.New(rand.NewSource(1))
	}
	if d.FaultRate > 0 && d.rnd.Float64() < d.FaultRate {
		return math.NaN()
	}
	return base + spread*d.rnd.Float64()
}
