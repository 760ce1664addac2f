package thermo

import "github.com/pkg/errors"

// ErrDisplayInit is the only fatal condition: the display could not be brought up.
var ErrDisplayInit = errors.New("display initialization failed")

type DisplayConfig struct {
	Width  int
	Height int

	// Bus selects the I2C bus for hardware displays; empty picks the first one.
	Bus string
}

// DefaultDisplayConfig matches a 0.96" 128x64 SSD1306 panel.
var DefaultDisplayConfig = DisplayConfig{Width: 128, Height: 64}

type Display interface {
	Begin(cfg DisplayConfig) error
	Clear()
	SetCursor(x, y int)
	Print(text string)
	Flush() error
}
