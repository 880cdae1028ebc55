package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cbegin/pitchpad-go/internal/api"
)

type fakePlayback struct {
	mu      sync.Mutex
	plays   int
	stops   int
	playErr error
	done    chan struct{}
	once    sync.Once
}

func newFakePlayback() *fakePlayback { return &fakePlayback{done: make(chan struct{})} }

func (p *fakePlayback) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
	return p.playErr
}

func (p *fakePlayback) Stop() error {
	p.mu.Lock()
	p.stops++
	p.mu.Unlock()
	p.end()
	return nil
}

func (p *fakePlayback) end()                   { p.once.Do(func() { close(p.done) }) }
func (p *fakePlayback) Done() <-chan struct{} { return p.done }

type fakeDecoder struct {
	mu        sync.Mutex
	decoded   []*fakePlayback
	err       error
	playErr   error
	lastBytes []byte
}

func (d *fakeDecoder) Decode(data []byte) (Playback, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastBytes = data
	if d.err != nil {
		return nil, d.err
	}
	p := newFakePlayback()
	p.playErr = d.playErr
	d.decoded = append(d.decoded, p)
	return p, nil
}

func (d *fakeDecoder) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.decoded)
}

type fetchFunc func(ctx context.Context, url string) ([]byte, error)

func (f fetchFunc) FetchBytes(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPlayTwiceFetchesOnce(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte("RIFF"))
	}))
	defer srv.Close()

	dec := &fakeDecoder{}
	b := NewBridge(api.NewClient(srv.URL), dec, WithLogger(quietLogger()))

	var ready atomic.Int32
	onReady := func(Playback) { ready.Add(1) }
	if err := b.Play(context.Background(), srv.URL+"/get-wav-file?index=0", onReady); err != nil {
		t.Fatalf("first play: %v", err)
	}
	if err := b.Play(context.Background(), srv.URL+"/get-wav-file?index=0", onReady); !errors.Is(err, ErrBusy) {
		t.Fatalf("second play err = %v, want ErrBusy", err)
	}
	close(release)
	b.Wait()

	if got := hits.Load(); got != 1 {
		t.Fatalf("fetches = %d, want 1", got)
	}
	if got := dec.count(); got != 1 {
		t.Fatalf("decodes = %d, want 1", got)
	}
	if got := dec.decoded[0].plays; got != 1 {
		t.Fatalf("play starts = %d, want 1", got)
	}
	if got := ready.Load(); got != 1 {
		t.Fatalf("onReady calls = %d, want 1", got)
	}
	if string(dec.lastBytes) != "RIFF" {
		t.Fatalf("decoder got %q, want RIFF", dec.lastBytes)
	}
	if !b.IsPlaying() {
		t.Fatalf("guard should stay set while playing")
	}
}

func TestStopWithoutHandle(t *testing.T) {
	b := NewBridge(fetchFunc(func(context.Context, string) ([]byte, error) { return nil, nil }), &fakeDecoder{})
	b.Stop(nil)
	if b.IsPlaying() {
		t.Fatalf("guard should be false")
	}
}

func TestStopClearsGuardAndRewinds(t *testing.T) {
	dec := &fakeDecoder{}
	b := NewBridge(fetchFunc(func(context.Context, string) ([]byte, error) { return []byte("x"), nil }), dec, WithLogger(quietLogger()))

	var handle Playback
	if err := b.Play(context.Background(), "u", func(p Playback) { handle = p }); err != nil {
		t.Fatalf("play: %v", err)
	}
	b.Wait()
	b.Stop(handle)
	b.Stop(handle)
	if b.IsPlaying() {
		t.Fatalf("guard should be cleared after stop")
	}
	if got := dec.decoded[0].stops; got != 2 {
		t.Fatalf("stops = %d, want 2", got)
	}
	if err := b.Play(context.Background(), "u", nil); err != nil {
		t.Fatalf("play after stop: %v", err)
	}
	b.Wait()
}

func TestFailuresReleaseGuard(t *testing.T) {
	cases := []struct {
		name  string
		fetch error
		dec   error
		play  error
	}{
		{name: "fetch", fetch: errors.New("connection refused")},
		{name: "decode", dec: errors.New("bad header")},
		{name: "play", play: errors.New("not allowed")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dec := &fakeDecoder{err: tc.dec, playErr: tc.play}
			fetch := fetchFunc(func(context.Context, string) ([]byte, error) {
				if tc.fetch != nil {
					return nil, tc.fetch
				}
				return []byte("x"), nil
			})
			b := NewBridge(fetch, dec, WithLogger(quietLogger()))
			called := false
			if err := b.Play(context.Background(), "u", func(Playback) { called = true }); err != nil {
				t.Fatalf("play: %v", err)
			}
			b.Wait()
			if b.IsPlaying() {
				t.Fatalf("guard still set after %s failure", tc.name)
			}
			if called {
				t.Fatalf("onReady called after %s failure", tc.name)
			}
		})
	}
}

func TestNaturalCompletionReleasesGuard(t *testing.T) {
	dec := &fakeDecoder{}
	b := NewBridge(fetchFunc(func(context.Context, string) ([]byte, error) { return []byte("x"), nil }), dec)
	if err := b.Play(context.Background(), "u", nil); err != nil {
		t.Fatalf("play: %v", err)
	}
	b.Wait()
	dec.decoded[0].end()

	deadline := time.Now().Add(2 * time.Second)
	for b.IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatalf("guard not released after playback ended")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStaleCompletionKeepsNewGuard(t *testing.T) {
	dec := &fakeDecoder{}
	b := NewBridge(fetchFunc(func(context.Context, string) ([]byte, error) { return []byte("x"), nil }), dec)

	var first Playback
	b.Play(context.Background(), "u", func(p Playback) { first = p })
	b.Wait()
	b.Stop(first)

	b.Play(context.Background(), "u", nil)
	b.Wait()
	// Give the first watcher a chance to observe its closed Done channel.
	time.Sleep(20 * time.Millisecond)
	if !b.IsPlaying() {
		t.Fatalf("stale completion cleared the guard of a newer playback")
	}
}

func TestStopEndedPlaybackKeepsPendingGuard(t *testing.T) {
	dec := &fakeDecoder{}
	hold := make(chan struct{})
	var calls atomic.Int32
	fetch := fetchFunc(func(context.Context, string) ([]byte, error) {
		if calls.Add(1) == 2 {
			<-hold
		}
		return []byte("x"), nil
	})
	b := NewBridge(fetch, dec, WithLogger(quietLogger()))

	var first Playback
	if err := b.Play(context.Background(), "u", func(p Playback) { first = p }); err != nil {
		t.Fatalf("play: %v", err)
	}
	b.Wait()
	dec.decoded[0].end()
	deadline := time.Now().Add(2 * time.Second)
	for b.IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatalf("guard not released after playback ended")
		}
		time.Sleep(time.Millisecond)
	}

	if err := b.Play(context.Background(), "u", nil); err != nil {
		t.Fatalf("second play: %v", err)
	}
	b.Stop(first)
	if !b.IsPlaying() {
		t.Fatalf("stopping an ended playback cleared the guard of a pending fetch")
	}
	if err := b.Play(context.Background(), "u", nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("third play err = %v, want ErrBusy", err)
	}

	close(hold)
	b.Wait()
	if got := dec.count(); got != 2 {
		t.Fatalf("decoded = %d, want 2", got)
	}
	if !b.IsPlaying() {
		t.Fatalf("guard should be held by the second playback")
	}
}
