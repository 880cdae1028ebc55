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

	"github.com/cbegin/pitchpad-go/internal/api"
	"github.com/cbegin/pitchpad-go/internal/canvas"
	"github.com/cbegin/pitchpad-go/internal/frequency"
	"github.com/cbegin/pitchpad-go/internal/status"
	"github.com/cbegin/pitchpad-go/internal/trajectory"
)

func main() {
	var (
		apiBase   = flag.String("api", api.DefaultBaseURL, "backend base URL")
		inputPath = flag.String("file", "", "read a pitch JSON file instead of the backend")
		outPath   = flag.String("out", "pitch.png", "output PNG path")
		width     = flag.Int("width", 1100, "image width in pixels")
		height    = flag.Int("height", 720, "image height in pixels")
		lineWidth = flag.Float64("line-width", trajectory.DefaultStyle.LineWidth, "stroke width in pixels")
		timeout   = flag.Duration("timeout", 0, "backend timeout (0 = none)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	renderer := trajectory.NewRenderer(trajectory.Style{Color: trajectory.DefaultStyle.Color, LineWidth: *lineWidth})
	shared := status.NewShared()
	cv := canvas.New(*width, *height)
	cv.Fill(color.White)

	if strings.TrimSpace(*inputPath) != "" {
		data, err := os.ReadFile(*inputPath)
		if err != nil {
			log.Fatal(err)
		}
		ds, err := trajectory.Decode(data)
		if err != nil {
			log.Fatal(err)
		}
		frequency.NewUpdater(nil, renderer, shared, frequency.WithLogger(logger)).Apply(*ds)
		renderer.Render(*ds, cv.Size(), cv)
	} else {
		client := api.NewClient(*apiBase, api.WithTimeout(*timeout), api.WithLogger(logger))
		u := frequency.NewUpdater(client, renderer, shared, frequency.WithLogger(logger))
		if _, err := u.FetchAndUpdate(context.Background(), client.PitchJSONURL(), cv); err != nil {
			log.Fatal(err)
		}
	}

	if err := cv.SavePNG(*outPath); err != nil {
		log.Fatal(err)
	}
	lo, hi := shared.FrequencyRange()
	fmt.Printf("wrote %s: %d segments, %.1f-%.1f Hz\n", *outPath, len(renderer.Data()), lo, hi)
}
