// Package icons loads the four button images.
package icons

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"sync"

	"github.com/cbegin/pitchpad-go/internal/geometry"
)

// Loader produces the image for one button.
type Loader interface {
	Load(ctx context.Context, b geometry.Button) (image.Image, error)
	Name() string
}

// FileName is the conventional file name of a button icon.
func FileName(b geometry.Button) string {
	return b.String() + ".png"
}

type Option func(*Set)

func WithLogger(l *slog.Logger) Option {
	return func(s *Set) { s.log = l }
}

// Set holds the button icons. Images are nil until loaded; the ready
// callbacks run once, after all four loaded successfully.
type Set struct {
	log *slog.Logger

	mu      sync.Mutex
	imgs    [geometry.NumButtons]image.Image
	loaded  int
	ready   bool
	onReady []func()
	wg      sync.WaitGroup
}

func NewSet(opts ...Option) *Set {
	s := &Set{log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load starts loading every icon from l in the background. Failures are
// logged and leave that icon nil, which also means the set never becomes
// ready.
func (s *Set) Load(ctx context.Context, l Loader) {
	for _, b := range geometry.Buttons {
		s.wg.Add(1)
		go func(b geometry.Button) {
			defer s.wg.Done()
			img, err := l.Load(ctx, b)
			if err != nil {
				s.log.Error("failed to load icon", "button", b, "source", l.Name(), "error", err)
				return
			}
			s.set(b, img)
		}(b)
	}
}

func (s *Set) set(b geometry.Button, img image.Image) {
	s.mu.Lock()
	if s.imgs[b] == nil {
		s.loaded++
	}
	s.imgs[b] = img
	var fire []func()
	if !s.ready && s.loaded == len(s.imgs) {
		s.ready = true
		fire = s.onReady
		s.onReady = nil
	}
	s.mu.Unlock()
	for _, fn := range fire {
		fn()
	}
}

// OnReady registers fn to run once all icons are loaded. If they already
// are, fn runs immediately.
func (s *Set) OnReady(fn func()) {
	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()
		fn()
		return
	}
	s.onReady = append(s.onReady, fn)
	s.mu.Unlock()
}

func (s *Set) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Image returns the icon for b, or nil if it has not loaded.
func (s *Set) Image(b geometry.Button) image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b < 0 || int(b) >= len(s.imgs) {
		return nil
	}
	return s.imgs[b]
}

// Wait blocks until every pending load has finished.
func (s *Set) Wait() {
	s.wg.Wait()
}

func decode(name string, r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode icon %s: %w", name, err)
	}
	return img, nil
}
