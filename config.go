package main

import (
	"flag"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/alepar/thermodisplay/thermo"
	"github.com/alepar/thermodisplay/thermo/sink"
)

// Config is the whole process configuration. Defaults come from the flags,
// an optional YAML file overrides them, explicitly set flags override both.
type Config struct {
	ListenAddr     string        `yaml:"listen_address"`
	TickInterval   time.Duration `yaml:"tick_interval"`
	UpdateInterval time.Duration `yaml:"update_interval"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`

	Sensor  SensorConfig  `yaml:"sensor"`
	Display DisplayConfig `yaml:"display"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
}

type SensorConfig struct {
	// Driver is one of iio, waveplus, dummy.
	Driver string `yaml:"driver"`
	Name   string `yaml:"name"`

	IIODevice string `yaml:"iio_device"`

	SerialNr     string        `yaml:"serial_number"`
	Address      string        `yaml:"address"`
	ScanDuration time.Duration `yaml:"scan_duration"`
	Retries      int           `yaml:"retries"`
	MaxAge       time.Duration `yaml:"max_age"`

	FaultRate float64 `yaml:"fault_rate"`
}

type DisplayConfig struct {
	// Driver is one of ssd1306, console.
	Driver string `yaml:"driver"`
	Bus    string `yaml:"bus"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type MQTTConfig struct {
	Enabled         bool `yaml:"enabled"`
	sink.MQTTConfig `yaml:",inline"`
}

func (c DisplayConfig) capability() thermo.DisplayConfig {
	return thermo.DisplayConfig{Width: c.Width, Height: c.Height, Bus: c.Bus}
}

// bindFlags registers every flag on fs with c's current values as defaults.
func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ListenAddr, "listen-address", c.ListenAddr, "The address to listen on for HTTP requests.")
	fs.DurationVar(&c.TickInterval, "tick-int", c.TickInterval, "how often the schedulers are polled")
	fs.DurationVar(&c.UpdateInterval, "update-int", c.UpdateInterval, "minimum time between two samples of one quantity")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "panic, fatal, error, warn, info, debug or trace")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "text or json")

	fs.StringVar(&c.Sensor.Driver, "sensor", c.Sensor.Driver, "sensor driver: iio, waveplus or dummy")
	fs.StringVar(&c.Sensor.Name, "sensor-name", c.Sensor.Name, "sensor label on published metrics")
	fs.StringVar(&c.Sensor.IIODevice, "iio-device", c.Sensor.IIODevice, "iio device directory name, empty to discover")
	fs.StringVar(&c.Sensor.SerialNr, "serial", c.Sensor.SerialNr, "wave plus serial number")
	fs.StringVar(&c.Sensor.Address, "address", c.Sensor.Address, "wave plus BLE address, skips the scan")
	fs.DurationVar(&c.Sensor.ScanDuration, "scan-dur", c.Sensor.ScanDuration, "scan duration")
	fs.IntVar(&c.Sensor.Retries, "retries", c.Sensor.Retries, "max number of tries in case of BLE errors")

	fs.StringVar(&c.Display.Driver, "display", c.Display.Driver, "display driver: ssd1306 or console")
	fs.StringVar(&c.Display.Bus, "i2c-bus", c.Display.Bus, "I2C bus of the display, empty for the first one")

	fs.BoolVar(&c.MQTT.Enabled, "mqtt", c.MQTT.Enabled, "also publish readings to MQTT")
	fs.StringVar(&c.MQTT.Broker, "mqtt-broker", c.MQTT.Broker, "MQTT broker URL")
	fs.StringVar(&c.MQTT.TopicPrefix, "mqtt-prefix", c.MQTT.TopicPrefix, "MQTT topic prefix")
}

func defaultConfig() Config {
	return Config{
		ListenAddr:     ":8080",
		TickInterval:   100 * time.Millisecond,
		UpdateInterval: thermo.DefaultUpdateInterval,
		LogLevel:       "info",
		LogFormat:      "text",
		Sensor: SensorConfig{
			Driver:       "iio",
			Name:         "dht22",
			ScanDuration: 5000 * time.Millisecond,
			Retries:      5,
		},
		Display: DisplayConfig{
			Driver: "ssd1306",
			Width:  thermo.DefaultDisplayConfig.Width,
			Height: thermo.DefaultDisplayConfig.Height,
		},
		MQTT: MQTTConfig{
			MQTTConfig: sink.MQTTConfig{
				Broker:      "tcp://localhost:1883",
				ClientID:    "thermodisplay",
				TopicPrefix: "thermodisplay",
				Timeout:     time.Second,
			},
		},
	}
}

// loadConfig parses args. The YAML file named by -config is applied on top
// of the defaults, then flags given on the command line win.
func loadConfig(args []string) (Config, error) {
	c := defaultConfig()

	fs := flag.NewFlagSet("thermodisplay", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	c.bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		fromFile := defaultConfig()
		if err := readConfigFile(*configPath, &fromFile); err != nil {
			return Config{}, err
		}
		// replay explicitly set flags on top of the file
		override := flag.NewFlagSet("override", flag.ContinueOnError)
		fromFile.bindFlags(override)
		var replay []string
		fs.Visit(func(f *flag.Flag) {
			if f.Name != "config" {
				replay = append(replay, "-"+f.Name+"="+f.Value.String())
			}
		})
		if err := override.Parse(replay); err != nil {
			return Config{}, err
		}
		c = fromFile
	}

	return c, c.validate()
}

func readConfigFile(path string, c *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config")
	}
	if err := yaml.UnmarshalStrict(raw, c); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}
	return nil
}

func (c Config) validate() error {
	if c.UpdateInterval <= 0 {
		return errors.Errorf("update interval must be positive, got %s", c.UpdateInterval)
	}
	if c.TickInterval <= 0 {
		return errors.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	switch c.Sensor.Driver {
	case "iio", "dummy":
	case "waveplus":
		if c.Sensor.SerialNr == "" && c.Sensor.Address == "" {
			return errors.New("waveplus sensor needs a serial number or an address")
		}
	default:
		return errors.Errorf("unknown sensor driver %q", c.Sensor.Driver)
	}
	switch c.Display.Driver {
	case "ssd1306", "console":
	default:
		return errors.Errorf("unknown display driver %q", c.Display.Driver)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("mqtt enabled without a broker")
	}
	return nil
}
