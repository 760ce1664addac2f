package thermo

import (
	"fmt"
	"image"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Text origins (baseline-left) on a 128x64 panel.
var (
	TemperatureOrigin = image.Pt(0, 40)
	HumidityOrigin    = image.Pt(68, 40)
)

// DisplayRenderer repaints the whole display from DisplayState on every call.
type DisplayRenderer struct {
	mu      sync.Mutex
	display Display
	state   *DisplayState
	log     logrus.FieldLogger
}

// NewDisplayRenderer brings up the display. An error wraps ErrDisplayInit
// and must be treated as fatal.
func NewDisplayRenderer(display Display, cfg DisplayConfig, state *DisplayState, log logrus.FieldLogger) (*DisplayRenderer, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := display.Begin(cfg); err != nil {
		return nil, errors.Wrap(ErrDisplayInit, err.Error())
	}
	// show whatever the panel buffer holds right after init
	if err := display.Flush(); err != nil {
		log.Warnf("initial display flush: %s", err)
	}

	return &DisplayRenderer{
		display: display,
		state:   state,
		log:     log,
	}, nil
}

func (d *DisplayRenderer) Render() {
	temperature, humidity := d.state.Snapshot()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.display.Clear()
	d.display.SetCursor(TemperatureOrigin.X, TemperatureOrigin.Y)
	d.display.Print(FormatTemperature(temperature))
	d.display.SetCursor(HumidityOrigin.X, HumidityOrigin.Y)
	d.display.Print(FormatHumidity(humidity))
	if err := d.display.Flush(); err != nil {
		d.log.Errorf("failed to flush display: %s", err)
	}
}

// FormatTemperature right-justifies into five characters with one decimal.
func FormatTemperature(celsius float64) string {
	return fmt.Sprintf("%5.1fC", celsius)
}

func FormatHumidity(percent int) string {
	return fmt.Sprintf("%3d%%", percent)
}
