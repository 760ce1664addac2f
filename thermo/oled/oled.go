// Package oled drives a monochrome SSD1306 OLED over I2C through periph.
package oled

import (
	"image"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/alepar/thermodisplay/thermo"
)

type Display struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
	*Canvas
}

func (d *Display) Begin(cfg thermo.DisplayConfig) error {
	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize periph host")
	}

	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return errors.Wrapf(err, "failed to open i2c bus %q", cfg.Bus)
	}

	opts := ssd1306.DefaultOpts
	if cfg.Width > 0 && cfg.Height > 0 {
		opts.W, opts.H = cfg.Width, cfg.Height
	}
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		_ = bus.Close()
		return errors.Wrap(err, "SSD1306 allocation failed")
	}

	log.Infof("ssd1306 %dx%d on %s", opts.W, opts.H, bus)
	d.bus = bus
	d.dev = dev
	d.Canvas = NewCanvas(dev.Bounds())
	return nil
}

func (d *Display) Flush() error {
	if d.dev == nil {
		return errors.New("display not initialized")
	}
	if err := d.dev.Draw(d.dev.Bounds(), d.Image(), image.Point{}); err != nil {
		return errors.Wrap(err, "failed to draw frame")
	}
	return nil
}

// Halt turns the panel off and releases the bus.
func (d *Display) Halt() error {
	if d.dev == nil {
		return nil
	}
	err := d.dev.Halt()
	if cerr := d.bus.Close(); err == nil {
		err = cerr
	}
	return err
}
