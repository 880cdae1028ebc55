package icons

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/cbegin/pitchpad-go/internal/geometry"
)

// Dir loads <button>.png files from a directory.
type Dir string

func (d Dir) Name() string { return "dir:" + string(d) }

func (d Dir) Load(_ context.Context, b geometry.Button) (image.Image, error) {
	path := filepath.Join(string(d), FileName(b))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(path, f)
}

type BytesFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Remote loads icons from the backend's get-icon endpoint.
type Remote struct {
	Fetch BytesFetcher
	URL   func(name string) string
}

func (r Remote) Name() string { return "api" }

func (r Remote) Load(ctx context.Context, b geometry.Button) (image.Image, error) {
	u := r.URL(FileName(b))
	data, err := r.Fetch.FetchBytes(ctx, u)
	if err != nil {
		return nil, err
	}
	return decode(u, bytes.NewReader(data))
}

// Builtin draws simple labelled tiles so the UI works without assets.
type Builtin struct {
	Size int
}

func (Builtin) Name() string { return "builtin" }

var builtinStyle = map[geometry.Button]struct {
	fill  color.RGBA
	label string
}{
	geometry.Green: {color.RGBA{46, 204, 64, 255}, "P"},
	geometry.Cyan:  {color.RGBA{0, 200, 220, 255}, "N"},
	geometry.Aux1:  {color.RGBA{255, 153, 0, 255}, "A"},
	geometry.Aux2:  {color.RGBA{155, 89, 182, 255}, "T"},
}

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

func labelFace(size float64) (font.Face, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
	})
	if monoErr != nil {
		return nil, monoErr
	}
	return truetype.NewFace(monoFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func (bl Builtin) Load(_ context.Context, b geometry.Button) (image.Image, error) {
	size := bl.Size
	if size <= 0 {
		size = 96
	}
	st := builtinStyle[b]
	s := float64(size)

	dc := gg.NewContext(size, size)
	dc.DrawRoundedRectangle(2, 2, s-4, s-4, s/8)
	dc.SetColor(st.fill)
	dc.FillPreserve()
	dc.SetColor(color.RGBA{40, 40, 40, 255})
	dc.SetLineWidth(2)
	dc.Stroke()

	face, err := labelFace(s * 0.5)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(st.label, s/2, s/2, 0.5, 0.35)
	return dc.Image(), nil
}
