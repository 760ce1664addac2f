// Package console emulates the OLED panel on a terminal. Pixel cursor
// positions map onto a character grid of 7x13 pixel cells, the size of the
// font the hardware display uses.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/alepar/thermodisplay/thermo"
)

const (
	cellWidth  = 7
	cellHeight = 13
)

var (
	colorBorder = lipgloss.Color("62")
	colorText   = lipgloss.Color("51")
)

type Display struct {
	Out io.Writer

	grid     [][]rune
	col, row int
	frame    lipgloss.Style
}

func New(out io.Writer) *Display {
	return &Display{Out: out}
}

func (d *Display) Begin(cfg thermo.DisplayConfig) error {
	if d.Out == nil {
		return errors.New("no output for console display")
	}
	cols, rows := cfg.Width/cellWidth, cfg.Height/cellHeight
	if cols < 1 || rows < 1 {
		return errors.Errorf("display %dx%d is smaller than one cell", cfg.Width, cfg.Height)
	}

	d.grid = make([][]rune, rows)
	for i := range d.grid {
		d.grid[i] = make([]rune, cols)
	}
	d.frame = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Foreground(colorText)
	d.Clear()
	return nil
}

func (d *Display) Clear() {
	for _, line := range d.grid {
		for i := range line {
			line[i] = ' '
		}
	}
	d.col, d.row = 0, 0
}

// SetCursor takes the text baseline; the cell containing it is the row.
func (d *Display) SetCursor(x, y int) {
	d.col = x / cellWidth
	d.row = (y - 1) / cellHeight
}

// Print writes at the cursor, clipping at the right edge.
func (d *Display) Print(text string) {
	if d.row < 0 || d.row >= len(d.grid) {
		return
	}
	line := d.grid[d.row]
	for _, r := range text {
		if d.col >= 0 && d.col < len(line) {
			line[d.col] = r
		}
		d.col++
	}
}

func (d *Display) Flush() error {
	_, err := fmt.Fprintln(d.Out, d.frame.Render(d.String()))
	return err
}

// String returns the current grid contents without decoration.
func (d *Display) String() string {
	lines := make([]string, len(d.grid))
	for i, line := range d.grid {
		lines[i] = string(line)
	}
	return strings.Join(lines, "\n")
}
