// Package iio reads DHT11/DHT22 sensors through the Linux industrial I/O
// subsystem, as exposed by the kernel dht11 driver (dtoverlay=dht11).
package iio

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

const (
	DefaultRoot   = "/sys/bus/iio/devices"
	DefaultDriver = "dht11"

	temperatureFile = "in_temp_input"
	humidityFile    = "in_humidityrelative_input"
)

type Sensor struct {
	// Root is the sysfs iio devices directory.
	Root string
	// Device is the iio device directory name (e.g. "iio:device0"). Empty
	// selects the first device whose name starts with Driver.
	Device string
	Driver string

	dir string
}

func (s *Sensor) Begin() error {
	root := s.Root
	if root == "" {
		root = DefaultRoot
	}
	if s.Device != "" {
		s.dir = filepath.Join(root, s.Device)
		return nil
	}

	driver := s.Driver
	if driver == "" {
		driver = DefaultDriver
	}
	dir, err := discover(root, driver)
	if err != nil {
		return err
	}
	log.Infof("found %s iio device at %s", driver, dir)
	s.dir = dir
	return nil
}

func discover(root, driver string) (string, error) {
	names, err := filepath.Glob(filepath.Join(root, "iio:device*", "name"))
	if err != nil {
		return "", errors.Wrap(err, "failed to list iio devices")
	}
	for _, namePath := range names {
		name, err := os.ReadFile(namePath)
		if err != nil {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(string(name)), driver) {
			return filepath.Dir(namePath), nil
		}
	}
	return "", errors.Errorf("no %s device under %s", driver, root)
}

func (s *Sensor) ReadTemperature() (float64, error) {
	milli, err := s.readMilli(temperatureFile)
	if err != nil {
		return 0, err
	}
	t := physic.ZeroCelsius + physic.Temperature(milli)*physic.MilliKelvin
	log.Debugf("iio temperature %s", t)
	return float64(t-physic.ZeroCelsius) / float64(physic.Kelvin), nil
}

func (s *Sensor) ReadHumidity() (float64, error) {
	milli, err := s.readMilli(humidityFile)
	if err != nil {
		return 0, err
	}
	// the kernel reports thousandths of a percent
	h := physic.RelativeHumidity(milli * int64(physic.PercentRH) / 1000)
	log.Debugf("iio humidity %s", h)
	return float64(h) / float64(physic.PercentRH), nil
}

// readMilli reads one integer channel. The dht11 driver answers with EIO or
// ETIMEDOUT when the one-wire transfer fails, which surfaces here as an error.
func (s *Sensor) readMilli(file string) (int64, error) {
	if s.dir == "" {
		return 0, errors.New("iio sensor not initialized")
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, file))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", file)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unparseable %s", file)
	}
	return v, nil
}
