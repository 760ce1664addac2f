package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/thermodisplay/thermo"
	"github.com/alepar/thermodisplay/thermo/console"
	"github.com/alepar/thermodisplay/thermo/iio"
	"github.com/alepar/thermodisplay/thermo/oled"
	"github.com/alepar/thermodisplay/thermo/sink"
	"github.com/alepar/thermodisplay/thermo/waveplus"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("invalid configuration: %s", err)
	}
	if err := setupLogging(cfg); err != nil {
		log.Fatalf("invalid logging configuration: %s", err)
	}
	log.Infof("starting thermodisplay %s (%s)", version.Info(), version.BuildContext())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil && err != context.Canceled {
		log.Errorf("exiting: %s", err)
		os.Exit(1)
	}
	log.Info("shutdown OK")
}

func setupLogging(cfg Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func run(ctx context.Context, cfg Config) error {
	metrics := sink.NewMetrics()
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}
	// Add Go module build info.
	prometheus.MustRegister(prometheus.NewBuildInfoCollector())

	display, closeDisplay := newDisplay(cfg.Display)
	defer closeDisplay()

	state := thermo.NewDisplayState()
	renderer, err := thermo.NewDisplayRenderer(display, cfg.Display.capability(), state, log.StandardLogger())
	if err != nil {
		// never run with a dead display
		return thermo.Halt(ctx, log.StandardLogger(), err)
	}

	go serveMetrics(cfg.ListenAddr, log.StandardLogger())

	sensor, closeSensor := newSensor(cfg.Sensor)
	defer closeSensor()
	reader := thermo.NewSensorReader(sensor, state, thermo.WithFaultHook(metrics.Fault))

	temperature, humidity := publishers(ctx, cfg, metrics)

	opts := []thermo.SchedulerOption{thermo.WithInterval(cfg.UpdateInterval)}
	loop := thermo.Loop{
		Interval: cfg.TickInterval,
		Tickables: []thermo.Tickable{
			thermo.NewTemperatureScheduler(reader, renderer, temperature, opts...),
			thermo.NewHumidityScheduler(reader, renderer, humidity, opts...),
		},
	}
	return loop.Run(ctx)
}

// serveMetrics blocks until the metrics listener fails. The failure is only
// logged; the display keeps running without an HTTP endpoint.
func serveMetrics(addr string, logger log.FieldLogger) {
	mux := http.NewServeMux()
	// Expose the registered metrics via HTTP.
	mux.Handle("/metrics", promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{
			// Opt into OpenMetrics to support exemplars.
			EnableOpenMetrics: true,
		},
	))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Errorf("metrics server on %s stopped: %s", addr, err)
	}
}

func newDisplay(cfg DisplayConfig) (thermo.Display, func()) {
	switch cfg.Driver {
	case "console":
		return console.New(os.Stdout), func() {}
	default:
		d := &oled.Display{}
		return d, func() {
			if err := d.Halt(); err != nil {
				log.Warnf("failed to halt display: %s", err)
			}
		}
	}
}

func newSensor(cfg SensorConfig) (thermo.Sensor, func()) {
	switch cfg.Driver {
	case "dummy":
		return thermo.NewDummySensor(1, cfg.FaultRate), func() {}
	case "waveplus":
		s := &waveplus.BleSensor{
			Addr:         cfg.Address,
			SerialNr:     cfg.SerialNr,
			ScanDuration: cfg.ScanDuration,
			Retries:      cfg.Retries,
			MaxAge:       cfg.MaxAge,
		}
		return s, func() { _ = s.Close() }
	default:
		return &iio.Sensor{Device: cfg.IIODevice}, func() {}
	}
}

func publishers(ctx context.Context, cfg Config, metrics *sink.Metrics) (temperature, humidity thermo.Publisher) {
	temps := sink.Fanout{metrics.Gauge(thermo.Temperature, cfg.Sensor.Name)}
	humids := sink.Fanout{metrics.Gauge(thermo.Humidity, cfg.Sensor.Name)}

	if cfg.MQTT.Enabled {
		client, err := sink.Connect(cfg.MQTT.MQTTConfig)
		if err != nil {
			// readings still reach the display and /metrics
			log.Errorf("mqtt disabled: %s", err)
		} else {
			go func() {
				<-ctx.Done()
				client.Disconnect(250)
			}()
			temps = append(temps, sink.NewMQTT(client, cfg.MQTT.MQTTConfig, thermo.Temperature))
			humids = append(humids, sink.NewMQTT(client, cfg.MQTT.MQTTConfig, thermo.Humidity))
		}
	}

	return sink.TemperatureRange(temps), humids
}
