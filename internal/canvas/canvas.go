// Package canvas is a small 2D drawing context in the shape of an HTML
// canvas, backed by an in-memory RGBA image.
package canvas

import (
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/cbegin/pitchpad-go/internal/geometry"
	"github.com/cbegin/pitchpad-go/internal/trajectory"
)

// Context is everything the controller and the trajectory renderer draw with.
type Context interface {
	trajectory.Path
	Size() geometry.Size
	ClearRect(x, y, w, h float64)
	// SetGlobalAlpha sets the opacity used by DrawImage.
	SetGlobalAlpha(a float64)
	DrawImage(img image.Image, x, y, w, h float64)
}

// Image is a Context over a gg drawing context. Each call is atomic; Version
// changes whenever pixels may have changed so viewers can re-upload lazily.
type Image struct {
	mu      sync.Mutex
	dc      *gg.Context
	alpha   float64
	version uint64
}

func New(width, height int) *Image {
	dc := gg.NewContext(width, height)
	dc.SetLineCap(gg.LineCapButt)
	return &Image{dc: dc, alpha: 1}
}

func (c *Image) Size() geometry.Size {
	return geometry.Size{W: float64(c.dc.Width()), H: float64(c.dc.Height())}
}

func (c *Image) rgba() *image.RGBA {
	return c.dc.Image().(*image.RGBA)
}

func pixelRect(x, y, w, h float64) image.Rectangle {
	return image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)),
	)
}

func (c *Image) ClearRect(x, y, w, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	xdraw.Draw(c.rgba(), pixelRect(x, y, w, h), image.Transparent, image.Point{}, xdraw.Src)
	c.version++
}

// Fill paints the whole canvas with col.
func (c *Image) Fill(col color.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	xdraw.Draw(c.rgba(), c.rgba().Bounds(), image.NewUniform(col), image.Point{}, xdraw.Src)
	c.version++
}

// Clear wipes the whole canvas.
func (c *Image) Clear() {
	s := c.Size()
	c.ClearRect(0, 0, s.W, s.H)
}

func (c *Image) SetGlobalAlpha(a float64) {
	c.mu.Lock()
	c.alpha = math.Max(0, math.Min(1, a))
	c.mu.Unlock()
}

// DrawImage scales img into the rectangle. A nil img draws nothing, like a
// browser drawing an image that never loaded.
func (c *Image) DrawImage(img image.Image, x, y, w, h float64) {
	if img == nil {
		return
	}
	dr := pixelRect(x, y, w, h)
	if dr.Empty() {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(c.alpha * 255))})
	xdraw.DrawMask(c.rgba(), dr, scaled, image.Point{}, mask, image.Point{}, xdraw.Over)
	c.version++
}

func (c *Image) SetStrokeStyle(col color.Color) {
	c.mu.Lock()
	c.dc.SetColor(col)
	c.mu.Unlock()
}

func (c *Image) SetLineWidth(w float64) {
	c.mu.Lock()
	c.dc.SetLineWidth(w)
	c.mu.Unlock()
}

func (c *Image) BeginPath() {
	c.mu.Lock()
	c.dc.ClearPath()
	c.mu.Unlock()
}

func (c *Image) MoveTo(x, y float64) {
	c.mu.Lock()
	c.dc.MoveTo(x, y)
	c.mu.Unlock()
}

func (c *Image) LineTo(x, y float64) {
	c.mu.Lock()
	c.dc.LineTo(x, y)
	c.mu.Unlock()
}

func (c *Image) Stroke() {
	c.mu.Lock()
	c.dc.Stroke()
	c.version++
	c.mu.Unlock()
}

// Version increments on every pixel-changing call.
func (c *Image) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Snapshot returns a copy of the current pixels.
func (c *Image) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	src := c.rgba()
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

// EncodePNG writes the canvas as PNG.
func (c *Image) EncodePNG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dc.EncodePNG(w)
}

// SavePNG writes the canvas to a PNG file.
func (c *Image) SavePNG(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dc.SavePNG(path)
}
