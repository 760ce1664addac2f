package oled

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Canvas is the 1-bit framebuffer the display capability draws into.
// Cursor positions are text baselines, like the Adafruit GFX custom fonts.
type Canvas struct {
	img    *image1bit.VerticalLSB
	drawer font.Drawer
}

func NewCanvas(bounds image.Rectangle) *Canvas {
	img := image1bit.NewVerticalLSB(bounds)
	return &Canvas{
		img: img,
		drawer: font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{C: image1bit.On},
			Face: basicfont.Face7x13,
		},
	}
}

func (c *Canvas) Clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0
	}
}

func (c *Canvas) SetCursor(x, y int) {
	c.drawer.Dot = fixed.P(x, y)
}

// Print draws text at the cursor and advances it.
func (c *Canvas) Print(text string) {
	c.drawer.DrawString(text)
}

func (c *Canvas) Image() image.Image {
	return c.img
}
