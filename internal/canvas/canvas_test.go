package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDrawImageHonorsGlobalAlpha(t *testing.T) {
	c := New(40, 20)
	c.SetGlobalAlpha(1)
	c.DrawImage(solid(4, 4, color.RGBA{255, 0, 0, 255}), 0, 0, 20, 20)
	c.SetGlobalAlpha(0.5)
	c.DrawImage(solid(4, 4, color.RGBA{255, 0, 0, 255}), 20, 0, 20, 20)

	snap := c.Snapshot()
	full := snap.RGBAAt(10, 10)
	half := snap.RGBAAt(30, 10)
	if full.A != 255 {
		t.Fatalf("full alpha pixel = %+v, want A=255", full)
	}
	if half.A < 120 || half.A > 135 {
		t.Fatalf("dimmed pixel = %+v, want A≈128", half)
	}
}

func TestClearRect(t *testing.T) {
	c := New(20, 20)
	c.DrawImage(solid(2, 2, color.White), 0, 0, 20, 20)
	before := c.Version()
	c.ClearRect(5, 5, 10, 10)
	if c.Version() == before {
		t.Fatalf("version should advance on clear")
	}
	snap := c.Snapshot()
	if got := snap.RGBAAt(10, 10); got.A != 0 {
		t.Fatalf("cleared pixel = %+v, want transparent", got)
	}
	if got := snap.RGBAAt(1, 1); got.A != 255 {
		t.Fatalf("untouched pixel = %+v, want opaque", got)
	}
}

func TestDrawNilImageIsNoop(t *testing.T) {
	c := New(10, 10)
	c.DrawImage(nil, 0, 0, 10, 10)
	if c.Version() != 0 {
		t.Fatalf("nil image should not touch the canvas")
	}
}

func TestStrokeAndEncode(t *testing.T) {
	c := New(100, 50)
	c.SetStrokeStyle(color.Black)
	c.SetLineWidth(4)
	c.BeginPath()
	c.MoveTo(10, 25)
	c.LineTo(90, 25)
	c.Stroke()

	if got := c.Snapshot().RGBAAt(50, 25); got.A == 0 {
		t.Fatalf("stroked pixel is transparent")
	}
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("png bounds = %v, want 100x50", b)
	}
}
