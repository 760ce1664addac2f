package thermo

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type fakeSensor struct {
	temps   []float64
	humids  []float64
	err     error
	begun   int
	beginFn func() error
}

func (f *fakeSensor) Begin() error {
	f.begun++
	if f.beginFn != nil {
		return f.beginFn()
	}
	return nil
}

func (f *fakeSensor) ReadTemperature() (float64, error) {
	return pop(&f.temps), f.err
}

func (f *fakeSensor) ReadHumidity() (float64, error) {
	return pop(&f.humids), f.err
}

// pop returns the next queued value, repeating the last one forever.
func pop(q *[]float64) float64 {
	if len(*q) == 0 {
		return math.NaN()
	}
	v := (*q)[0]
	if len(*q) > 1 {
		*q = (*q)[1:]
	}
	return v
}

// fakeDisplay keeps every text drawn since the last Clear, keyed by cursor.
type fakeDisplay struct {
	beginErr error
	flushErr error

	ops     []string
	cursor  image.Point
	screen  map[image.Point]string
	flushed []map[image.Point]string
}

func (f *fakeDisplay) Begin(cfg DisplayConfig) error {
	f.ops = append(f.ops, fmt.Sprintf("begin %dx%d", cfg.Width, cfg.Height))
	return f.beginErr
}

func (f *fakeDisplay) Clear() {
	f.ops = append(f.ops, "clear")
	f.screen = map[image.Point]string{}
}

func (f *fakeDisplay) SetCursor(x, y int) {
	f.ops = append(f.ops, fmt.Sprintf("cursor %d,%d", x, y))
	f.cursor = image.Pt(x, y)
}

func (f *fakeDisplay) Print(text string) {
	f.ops = append(f.ops, "print "+text)
	if f.screen == nil {
		f.screen = map[image.Point]string{}
	}
	f.screen[f.cursor] += text
}

func (f *fakeDisplay) Flush() error {
	f.ops = append(f.ops, "flush")
	snap := map[image.Point]string{}
	for k, v := range f.screen {
		snap[k] = v
	}
	f.flushed = append(f.flushed, snap)
	return f.flushErr
}

func (f *fakeDisplay) last() map[image.Point]string {
	if len(f.flushed) == 0 {
		return nil
	}
	return f.flushed[len(f.flushed)-1]
}

func (f *fakeDisplay) text() string {
	last := f.last()
	return strings.TrimSpace(last[TemperatureOrigin] + "|" + last[HumidityOrigin])
}

type recorder struct {
	mu     sync.Mutex
	values []float64
}

func (r *recorder) Publish(v float64) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2022, 12, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var errBus = errors.New("i2c bus timeout")
