package thermo

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultUpdateInterval is the minimum time between two samples of one quantity.
const DefaultUpdateInterval = 5000 * time.Millisecond

// UpdateScheduler drives one logical sensor. Each Tick either runs the full
// read, render, publish sequence or does nothing at all.
type UpdateScheduler struct {
	quantity  Quantity
	reader    *SensorReader
	renderer  *DisplayRenderer
	publisher Publisher
	interval  time.Duration
	now       func() time.Time
	log       logrus.FieldLogger

	lastUpdate time.Time
	value      float64
}

type SchedulerOption func(*UpdateScheduler)

func WithInterval(d time.Duration) SchedulerOption {
	return func(s *UpdateScheduler) { s.interval = d }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *UpdateScheduler) { s.now = now }
}

func WithSchedulerLogger(l logrus.FieldLogger) SchedulerOption {
	return func(s *UpdateScheduler) { s.log = l }
}

// NewUpdateScheduler performs one unconditional read, render, publish cycle
// before returning, so the display and the consumer start with a value.
func NewUpdateScheduler(q Quantity, reader *SensorReader, renderer *DisplayRenderer, publisher Publisher, opts ...SchedulerOption) *UpdateScheduler {
	s := &UpdateScheduler{
		quantity:  q,
		reader:    reader,
		renderer:  renderer,
		publisher: publisher,
		interval:  DefaultUpdateInterval,
		now:       time.Now,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("quantity", q)

	s.update()
	s.log.Infof("%s sensor initialization completed", q)
	return s
}

func NewTemperatureScheduler(reader *SensorReader, renderer *DisplayRenderer, publisher Publisher, opts ...SchedulerOption) *UpdateScheduler {
	return NewUpdateScheduler(Temperature, reader, renderer, publisher, opts...)
}

func NewHumidityScheduler(reader *SensorReader, renderer *DisplayRenderer, publisher Publisher, opts ...SchedulerOption) *UpdateScheduler {
	return NewUpdateScheduler(Humidity, reader, renderer, publisher, opts...)
}

// Tick is safe to call arbitrarily often.
func (s *UpdateScheduler) Tick() {
	if s.now().Sub(s.lastUpdate) < s.interval {
		return
	}
	s.update()
	s.log.Infof("%s update: %v", s.quantity, s.value)
}

func (s *UpdateScheduler) update() {
	value := s.reader.Read(s.quantity)
	s.renderer.Render()
	s.publisher.Publish(value)

	s.value = value
	s.lastUpdate = s.now()
}

func (s *UpdateScheduler) Quantity() Quantity {
	return s.quantity
}

// Value is the last published Reading.
func (s *UpdateScheduler) Value() float64 {
	return s.value
}

// LastUpdate is when the last cycle completed.
func (s *UpdateScheduler) LastUpdate() time.Time {
	return s.lastUpdate
}
