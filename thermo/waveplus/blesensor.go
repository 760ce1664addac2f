// Package waveplus reads temperature and humidity from an Airthings Wave
// Plus over Bluetooth LE. One BLE transfer yields both quantities, so a
// sample is reused until it is older than MaxAge.
package waveplus

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DefaultMaxAge = time.Minute

// failureHold is how long a failed fetch is reported to the other quantity
// before the device is tried again.
const failureHold = 2 * time.Second

var errNoAddr = errors.New("no device address")

var (
	sensorServiceUUID        = ble.MustParse("b42e1c08ade711e489d3123b93f75cba")
	sensorCharacteristicUUID = ble.MustParse("b42e2a68ade711e489d3123b93f75cba")
)

type BleSensor struct {
	// Addr of the device; when empty it is looked up by SerialNr on Begin.
	Addr         string
	SerialNr     string
	ScanDuration time.Duration
	Retries      int
	MaxAge       time.Duration

	mu       sync.Mutex
	last     Values
	lastAt   time.Time
	lastErr  error
	errAt    time.Time
	fetch    func() (Values, error)
	transfer func() (Values, error)
	now      func() time.Time
	hasValue bool
}

// Begin opens the host BLE adapter and resolves the device address.
func (sensor *BleSensor) Begin() error {
	d, err := linux.NewDevice()
	if err != nil {
		return errors.Wrap(err, "failed to open ble")
	}
	ble.SetDefaultDevice(d)

	if sensor.Addr == "" {
		scanner := BleScanner{ScanDuration: sensor.ScanDuration, Retries: sensor.Retries}
		addr, err := scanner.Find(sensor.SerialNr)
		if err != nil {
			return err
		}
		log.Infof("Found: serialNr %s addr %s", sensor.SerialNr, addr)
		sensor.Addr = addr
	}
	return nil
}

// Close releases the BLE adapter.
func (sensor *BleSensor) Close() error {
	return ble.Stop()
}

func (sensor *BleSensor) ReadTemperature() (float64, error) {
	v, err := sensor.sample()
	return v.Temperature, err
}

func (sensor *BleSensor) ReadHumidity() (float64, error) {
	v, err := sensor.sample()
	return v.Humidity, err
}

func (sensor *BleSensor) sample() (Values, error) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()

	now := time.Now
	if sensor.now != nil {
		now = sensor.now
	}
	maxAge := sensor.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if sensor.hasValue && now().Sub(sensor.lastAt) < maxAge {
		return sensor.last, nil
	}
	if sensor.lastErr != nil && now().Sub(sensor.errAt) < failureHold {
		return Values{}, sensor.lastErr
	}

	fetch := sensor.fetch
	if fetch == nil {
		fetch = sensor.Receive
	}
	values, err := fetch()
	if err != nil {
		sensor.lastErr, sensor.errAt = err, now()
		return Values{}, err
	}
	sensor.last, sensor.lastAt, sensor.hasValue = values, now(), true
	sensor.lastErr = nil
	return values, nil
}

// Receive reads a fresh sample from the device, retrying BLE errors.
func (sensor *BleSensor) Receive() (Values, error) {
	if sensor.Addr == "" {
		return Values{}, errNoAddr
	}
	transfer := sensor.transfer
	if transfer == nil {
		transfer = sensor.receive
	}
	var values Values
	err := retry.Do(
		func() error {
			var err error
			values, err = transfer()
			return err
		},
		retry.Attempts(attempts(sensor.Retries)),
		retry.Delay(sensor.ScanDuration), // self-pacing interval in an attempt to fix freezes
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Errorf("retrying error in receive (attempt %d): %s", n+1, err)
		}),
	)
	if err != nil {
		return Values{}, errors.Wrap(err, "all retries to receive failed")
	}
	return values, nil
}

func (sensor *BleSensor) receive() (Values, error) {
	if sensor.Addr == "" {
		return Values{}, errNoAddr
	}
	filter := func(a ble.Advertisement) bool {
		return strings.EqualFold(a.Addr().String(), sensor.Addr)
	}

	log.Debugf("connecting to device %s", sensor.Addr)
	ctx := ble.WithSigHandler(context.WithTimeout(context.Background(), sensor.ScanDuration))
	cln, err := ble.Connect(ctx, filter)
	if err != nil {
		return Values{}, errors.Wrap(err, "couldn't connect to ble")
	}

	// the peripheral may drop the connection on its own, so wait for the
	// disconnect notification rather than assuming CancelConnection did it
	done := make(chan struct{})
	go func() {
		<-cln.Disconnected()
		log.Debugf("device disconnected")
		close(done)
	}()
	defer func() {
		_ = cln.CancelConnection()
		<-done
	}()

	services, err := cln.DiscoverServices([]ble.UUID{sensorServiceUUID})
	if err != nil {
		return Values{}, errors.Wrap(err, "couldn't discover services")
	}
	if len(services) == 0 {
		return Values{}, errors.New("did not find expected sensor service")
	}

	characteristics, err := cln.DiscoverCharacteristics([]ble.UUID{sensorCharacteristicUUID}, services[0])
	if err != nil {
		return Values{}, errors.Wrap(err, "couldn't discover characteristic")
	}
	if len(characteristics) == 0 {
		return Values{}, errors.New("did not find expected characteristic")
	}

	payload, err := cln.ReadCharacteristic(characteristics[0])
	if err != nil {
		return Values{}, errors.Wrap(err, "failed to read characteristic value")
	}
	return decode(payload)
}
