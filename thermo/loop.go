package thermo

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Loop ticks every Tickable in order, on one goroutine, at a fixed cadence.
// Interval should be well below the schedulers' update interval.
type Loop struct {
	Interval  time.Duration
	Tickables []Tickable
}

// Run blocks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, t := range l.Tickables {
				t.Tick()
			}
		}
	}
}

// Halt parks the process after a fatal display fault. It never lets the
// caller proceed with normal operation: it only returns once ctx is done.
func Halt(ctx context.Context, log logrus.FieldLogger, err error) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.Errorf("Error: %s, halting", err)
	<-ctx.Done()
	return err
}
