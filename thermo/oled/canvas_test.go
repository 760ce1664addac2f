package oled

import (
	"image"
	"testing"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func litPixels(img image.Image, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.At(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestCanvasPrintAndClear(t *testing.T) {
	c := NewCanvas(image.Rect(0, 0, 128, 64))

	c.SetCursor(0, 40)
	c.Print(" 23.5C")
	c.SetCursor(68, 40)
	c.Print(" 48%")

	left := litPixels(c.Image(), image.Rect(0, 20, 64, 45))
	right := litPixels(c.Image(), image.Rect(68, 20, 128, 45))
	if left == 0 || right == 0 {
		t.Fatalf("expected lit pixels in both fields, got %d/%d", left, right)
	}
	if above := litPixels(c.Image(), image.Rect(0, 0, 128, 20)); above != 0 {
		t.Errorf("unexpected pixels above the text line: %d", above)
	}

	c.Clear()
	if n := litPixels(c.Image(), c.Image().Bounds()); n != 0 {
		t.Errorf("pixels after Clear: got %d, want 0", n)
	}
}

func TestFlushBeforeBegin(t *testing.T) {
	d := &Display{}
	if err := d.Flush(); err == nil {
		t.Error("expected error flushing an uninitialized display")
	}
	if err := d.Halt(); err != nil {
		t.Errorf("Halt on uninitialized display: %v", err)
	}
}
