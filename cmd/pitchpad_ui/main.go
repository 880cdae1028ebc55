package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/cbegin/pitchpad-go"
	"github.com/cbegin/pitchpad-go/internal/api"
	"github.com/cbegin/pitchpad-go/internal/canvas"
	"github.com/cbegin/pitchpad-go/internal/geometry"
	"github.com/cbegin/pitchpad-go/internal/icons"
	"github.com/cbegin/pitchpad-go/internal/status"
)

var (
	bgColor        = color.RGBA{245, 245, 240, 255}
	highlightColor = color.RGBA{0, 0, 128, 255}
	statusColor    = color.RGBA{24, 24, 32, 200}
)

type game struct {
	ctl    *pitchpad.Controller
	canvas *canvas.Image
	shared *status.Shared
	track  status.Tracker

	canvasImg *ebiten.Image
	uploaded  uint64
	hovered   bool
	touchID   ebiten.TouchID
	touching  bool
}

func newGame(ctl *pitchpad.Controller, cv *canvas.Image, shared *status.Shared) *game {
	s := cv.Size()
	return &game{
		ctl:       ctl,
		canvas:    cv,
		shared:    shared,
		canvasImg: ebiten.NewImage(int(s.W), int(s.H)),
		uploaded:  ^uint64(0),
	}
}

func (g *game) Update() error {
	x, y, pressed := g.pointer()
	s := g.canvas.Size()
	pos := status.Position{X: float64(x) / s.W, Y: float64(y) / s.H}
	if ev, ok := g.track.Update(pos, pressed); ok {
		g.shared.Publish(ev)
	}

	inButton := g.shared.IsInTheButton()
	if inButton != g.hovered {
		g.hovered = inButton
		if inButton {
			ebiten.SetCursorShape(ebiten.CursorShapePointer)
		} else {
			ebiten.SetCursorShape(ebiten.CursorShapeDefault)
		}
	}
	return nil
}

// pointer returns the active pointer, preferring a touch over the mouse.
func (g *game) pointer() (x, y int, pressed bool) {
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		if !g.touching {
			g.touchID = id
			g.touching = true
		}
	}
	if g.touching {
		if inpututil.IsTouchJustReleased(g.touchID) {
			g.touching = false
			x, y = inpututil.TouchPositionInPreviousTick(g.touchID)
			return x, y, false
		}
		x, y = ebiten.TouchPosition(g.touchID)
		return x, y, true
	}
	x, y = ebiten.CursorPosition()
	return x, y, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)

	if v := g.canvas.Version(); v != g.uploaded {
		g.canvasImg.WritePixels(g.canvas.Snapshot().Pix)
		g.uploaded = v
	}
	screen.DrawImage(g.canvasImg, nil)

	if g.hovered {
		g.drawHoverBorder(screen)
	}
	g.drawStatus(screen)
}

func (g *game) drawHoverBorder(screen *ebiten.Image) {
	cur := g.shared.Current()
	b, ok := geometry.Hit(cur.Position.X, cur.Position.Y, g.canvas.Size())
	if !ok {
		return
	}
	r := geometry.Region(b, g.canvas.Size())
	ebitenutil.DrawRect(screen, r.X-2, r.Y-2, r.W+4, 2, highlightColor)
	ebitenutil.DrawRect(screen, r.X-2, r.Y+r.H, r.W+4, 2, highlightColor)
	ebitenutil.DrawRect(screen, r.X-2, r.Y, 2, r.H, highlightColor)
	ebitenutil.DrawRect(screen, r.X+r.W, r.Y, 2, r.H, highlightColor)
}

func (g *game) drawStatus(screen *ebiten.Image) {
	lo, hi := g.shared.FrequencyRange()
	msg := fmt.Sprintf("recording %d  playing=%v  range %.1f-%.1f Hz  segments %d",
		g.ctl.AudioIndex(), g.ctl.IsPlaying(), lo, hi, len(g.ctl.TrajectoryData()))
	s := g.canvas.Size()
	ebitenutil.DrawRect(screen, 0, s.H-18, s.W, 18, statusColor)
	ebitenutil.DebugPrintAt(screen, msg, int(s.W*0.15), int(s.H)-16)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	s := g.canvas.Size()
	return int(s.W), int(s.H)
}

func iconLoader(source string, client *api.Client) icons.Loader {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", "builtin":
		return icons.Builtin{}
	case "api":
		return icons.Remote{Fetch: client, URL: client.IconURL}
	default:
		return icons.Dir(source)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func main() {
	var (
		apiBase    = flag.String("api", api.DefaultBaseURL, "backend base URL")
		width      = flag.Int("width", 1100, "canvas width in pixels")
		height     = flag.Int("height", 720, "canvas height in pixels")
		iconSource = flag.String("icons", "builtin", "icon source: builtin|api|<directory>")
		sampleRate = flag.Int("sample-rate", pitchpad.DefaultSampleRate, "audio output sample rate")
		timeout    = flag.Duration("timeout", 0, "per-request backend timeout (0 = none)")
		exportPath = flag.String("export", "", "write the canvas to this PNG file on exit")
		logLevel   = flag.String("log-level", "info", "debug|info|warn|error")
	)
	flag.Parse()

	logger, err := newLogger(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := api.NewClient(*apiBase, api.WithTimeout(*timeout), api.WithLogger(logger))
	set := icons.NewSet(icons.WithLogger(logger))
	set.Load(ctx, iconLoader(*iconSource, client))

	cv := canvas.New(*width, *height)
	shared := status.NewShared()
	ctl, err := pitchpad.New(cv, shared,
		pitchpad.WithContext(ctx),
		pitchpad.WithClient(client),
		pitchpad.WithSampleRate(*sampleRate),
		pitchpad.WithIcons(set),
		pitchpad.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}
	detach := ctl.Attach(shared)

	g := newGame(ctl, cv, shared)
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("pitchpad")
	runErr := ebiten.RunGame(g)

	detach()
	ctl.Close()
	if *exportPath != "" {
		if err := writePNG(ctl, *exportPath); err != nil {
			logger.Error("export canvas", "path", *exportPath, "error", err)
		}
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}

func writePNG(ctl *pitchpad.Controller, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ctl.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
