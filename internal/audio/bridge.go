// Package audio fetches audio blobs and plays them, one at a time.
package audio

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrBusy is returned by Play while another playback holds the guard.
var ErrBusy = errors.New("audio playback already active")

// Playback is a decoded, startable audio clip.
type Playback interface {
	Play() error
	// Stop halts playback and rewinds to the start.
	Stop() error
	// Done is closed when playback ends naturally or is stopped.
	Done() <-chan struct{}
}

type Decoder interface {
	Decode(data []byte) (Playback, error)
}

type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

type Option func(*Bridge)

func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// Bridge enforces at most one active playback. The guard is taken
// synchronously in Play, before any network work starts, and released on
// failure, natural completion, or Stop.
type Bridge struct {
	fetch   Fetcher
	decoder Decoder
	log     *slog.Logger

	mu      sync.Mutex
	playing bool
	active  Playback

	wg sync.WaitGroup
}

func NewBridge(f Fetcher, d Decoder, opts ...Option) *Bridge {
	b := &Bridge{fetch: f, decoder: d, log: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Play fetches url, decodes it and starts playback in the background.
// onReady runs on the background goroutine once playback has started. Play
// returns ErrBusy without doing anything if a playback is already active.
func (b *Bridge) Play(ctx context.Context, url string, onReady func(Playback)) error {
	b.mu.Lock()
	if b.playing {
		b.mu.Unlock()
		return ErrBusy
	}
	b.playing = true
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		p, err := b.start(ctx, url)
		if err != nil {
			b.log.Error("play audio", "url", url, "error", err)
			b.release(nil)
			return
		}
		b.mu.Lock()
		b.active = p
		b.mu.Unlock()
		if onReady != nil {
			onReady(p)
		}
		go b.watch(ctx, p)
	}()
	return nil
}

func (b *Bridge) start(ctx context.Context, url string) (Playback, error) {
	data, err := b.fetch.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	p, err := b.decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	if err := p.Play(); err != nil {
		return nil, err
	}
	return p, nil
}

func (b *Bridge) watch(ctx context.Context, p Playback) {
	select {
	case <-p.Done():
		b.release(p)
	case <-ctx.Done():
	}
}

// release clears the guard. A non-nil p only clears it while p is still the
// active playback, so a stale completion cannot unblock a newer one.
func (b *Bridge) release(p Playback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p != nil && b.active != p {
		return
	}
	b.playing = false
	b.active = nil
}

// Stop halts p and, if p is the active playback, clears the guard. A nil p
// is a no-op. A p that already ended leaves the guard alone, since it may
// belong to a newer request that is still being fetched.
func (b *Bridge) Stop(p Playback) {
	if p == nil {
		return
	}
	if err := p.Stop(); err != nil {
		b.log.Warn("stop audio", "error", err)
	}
	b.release(p)
}

// IsPlaying reports whether the guard is held.
func (b *Bridge) IsPlaying() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

// Wait blocks until every in-flight fetch/decode/start has finished.
func (b *Bridge) Wait() {
	b.wg.Wait()
}
