// Package frequency fetches pitch datasets and plots them.
package frequency

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cbegin/pitchpad-go/internal/geometry"
	"github.com/cbegin/pitchpad-go/internal/trajectory"
)

// Bounds receives the frequency range of each fetched dataset.
type Bounds interface {
	SetMinFrequency(f float64)
	SetMaxFrequency(f float64)
}

type JSONFetcher interface {
	FetchJSON(ctx context.Context, url string, v any) error
}

// Surface is where trajectories are drawn.
type Surface interface {
	trajectory.Path
	Size() geometry.Size
}

type Option func(*Updater)

func WithLogger(l *slog.Logger) Option {
	return func(u *Updater) { u.log = l }
}

type Updater struct {
	fetch    JSONFetcher
	renderer *trajectory.Renderer
	bounds   Bounds
	log      *slog.Logger

	// mu serializes clear, publish and render so overlapping fetches never
	// interleave their datasets.
	mu sync.Mutex
}

func NewUpdater(f JSONFetcher, r *trajectory.Renderer, b Bounds, opts ...Option) *Updater {
	u := &Updater{fetch: f, renderer: r, bounds: b, log: slog.Default()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// FetchAndUpdate fetches a dataset from url and, only once it has decoded
// successfully, clears the accumulated trajectory, publishes the new
// frequency range and renders the dataset onto dst. On error nothing changes.
func (u *Updater) FetchAndUpdate(ctx context.Context, url string, dst Surface) (*trajectory.Dataset, error) {
	var ds trajectory.Dataset
	if err := u.fetch.FetchJSON(ctx, url, &ds); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.renderer.Clear()
	u.Apply(ds)
	u.renderer.Render(ds, dst.Size(), dst)
	return &ds, nil
}

// Apply publishes the dataset's frequency range.
func (u *Updater) Apply(ds trajectory.Dataset) {
	if u.bounds != nil {
		u.bounds.SetMinFrequency(ds.MinFrequency)
		u.bounds.SetMaxFrequency(ds.MaxFrequency)
	}
	u.log.Info("frequency range updated", "min_frequency", ds.MinFrequency, "max_frequency", ds.MaxFrequency)
}
