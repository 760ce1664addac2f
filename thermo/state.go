package thermo

import (
	"math"
	"sync"
)

// DisplayState holds the last temperature and humidity shown on the display.
// Both logical sensors write into it; the renderer is its only reader.
type DisplayState struct {
	mu          sync.Mutex
	temperature float64
	humidity    int
}

func NewDisplayState() *DisplayState {
	return &DisplayState{
		temperature: Fallback,
		humidity:    int(Fallback),
	}
}

func (s *DisplayState) SetTemperature(celsius float64) {
	s.mu.Lock()
	s.temperature = celsius
	s.mu.Unlock()
}

// SetHumidity stores the humidity rounded half away from zero.
func (s *DisplayState) SetHumidity(percent float64) {
	s.mu.Lock()
	s.humidity = int(math.Round(percent))
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of both values.
func (s *DisplayState) Snapshot() (temperature float64, humidity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temperature, s.humidity
}
