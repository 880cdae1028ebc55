package pitchpad

import (
	"errors"
	"image/color"
	"io"

	"github.com/cbegin/pitchpad-go/internal/canvas"
)

// ErrNoSnapshot is returned when the controller's canvas cannot be encoded.
var ErrNoSnapshot = errors.New("canvas does not support PNG snapshots")

type pngEncoder interface {
	EncodePNG(w io.Writer) error
}

// WritePNG encodes the live canvas, buttons and trajectory included.
func (c *Controller) WritePNG(w io.Writer) error {
	enc, ok := c.canvas.(pngEncoder)
	if !ok {
		return ErrNoSnapshot
	}
	c.drawMu.Lock()
	defer c.drawMu.Unlock()
	return enc.EncodePNG(w)
}

// PlotPNG replays the accumulated trajectory alone on a background of bg and
// writes it as PNG.
func (c *Controller) PlotPNG(w io.Writer, bg color.Color) error {
	size := c.canvas.Size()
	img := canvas.New(int(size.W), int(size.H))
	if bg != nil {
		img.Fill(bg)
	}
	c.plot.Replay(img)
	return img.EncodePNG(w)
}
