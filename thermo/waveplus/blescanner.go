package waveplus

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type BleScanner struct {
	ScanDuration time.Duration
	Retries      int
}

// Scan returns a map from serial number to device address.
func (scanner *BleScanner) Scan() (map[string]string, error) {
	var devices map[string]string
	err := retry.Do(
		func() error {
			var err error
			devices, err = scanner.scan()
			return err
		},
		retry.Attempts(attempts(scanner.Retries)),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Errorf("retrying error in scan (attempt %d): %s", n+1, err)
		}),
	)
	if err != nil {
		return map[string]string{}, errors.Wrap(err, "all retries to scan failed")
	}
	return devices, nil
}

// Find resolves the address of the device with the given serial number.
func (scanner *BleScanner) Find(serialNr string) (string, error) {
	devices, err := scanner.Scan()
	if err != nil {
		return "", err
	}
	addr, ok := devices[serialNr]
	if !ok {
		return "", errors.Errorf("no wave plus with serial number %s in range", serialNr)
	}
	return addr, nil
}

func (scanner *BleScanner) scan() (map[string]string, error) {
	ctx := ble.WithSigHandler(context.WithTimeout(context.Background(), scanner.ScanDuration))
	ads, err := ble.Find(ctx, false, wavePlusOnlyFilter)
	if err != nil {
		switch errors.Cause(err) {
		case nil:
		case context.DeadlineExceeded:
		case context.Canceled:
			return nil, errors.Wrap(err, "scan for devices cancelled")
		default:
			return nil, errors.Wrap(err, "failed to scan for devices")
		}
	}

	devices := map[string]string{}
	for _, a := range ads {
		devices[manufacturerDataToSerialNumber(a.ManufacturerData())] = a.Addr().String()
	}
	return devices, nil
}

func wavePlusOnlyFilter(a ble.Advertisement) bool {
	return a.Connectable() && isWavePlus(a.ManufacturerData())
}

func isWavePlus(manufacturerData []byte) bool {
	return len(manufacturerData) >= 6 && manufacturerData[0] == 0x34 && manufacturerData[1] == 0x03
}

func manufacturerDataToSerialNumber(manufacturerData []byte) string {
	serialNumber := uint32(manufacturerData[2])
	serialNumber |= uint32(manufacturerData[3]) << 8
	serialNumber |= uint32(manufacturerData[4]) << 16
	serialNumber |= uint32(manufacturerData[5]) << 24
	return fmt.Sprint(serialNumber)
}

func attempts(retries int) uint {
	if retries < 1 {
		return 1
	}
	return uint(retries)
}
