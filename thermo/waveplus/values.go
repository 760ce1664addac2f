package waveplus

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

type Values struct {
	// units: % of relative Humidity
	Humidity float64

	// units: degrees Celsius
	Temperature float64

	// units: Bq/m3
	RadonShort uint16
	RadonLong  uint16

	// units: hPa
	AtmPressure float64

	// units: ppm
	Co2Level float64

	// units: ppb
	VocLevel float64
}

// rawValues mirrors the 20 byte little-endian sensor characteristic.
type rawValues struct {
	Version     uint8
	Humidity    uint8
	_           [2]uint8
	RadonShort  uint16
	RadonLong   uint16
	Temperature uint16
	AtmPressure uint16
	Co2         uint16
	Voc         uint16
	_           [2]uint16
}

const payloadVersion = 1

func decode(b []byte) (Values, error) {
	var raw rawValues
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &raw); err != nil {
		return Values{}, errors.Wrapf(err, "short sensor payload (%d bytes)", len(b))
	}
	if raw.Version != payloadVersion {
		return Values{}, errors.Errorf("unsupported sensor payload version %d", raw.Version)
	}

	return Values{
		Humidity:    float64(raw.Humidity) / 2.0,
		Temperature: float64(raw.Temperature) / 100.0,
		RadonShort:  raw.RadonShort,
		RadonLong:   raw.RadonLong,
		AtmPressure: float64(raw.AtmPressure) / 50.0,
		Co2Level:    float64(raw.Co2),
		VocLevel:    float64(raw.Voc),
	}, nil
}
