package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// eofReader closes done the first time the wrapped stream reports io.EOF.
// The ebiten player reads ahead of the speaker, so done fires at most one
// buffer before the listener hears the end.
type eofReader struct {
	src    io.ReadSeeker
	signal func()
}

func (r *eofReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if err == io.EOF {
		r.signal()
	}
	return n, err
}

func (r *eofReader) Seek(offset int64, whence int) (int64, error) {
	return r.src.Seek(offset, whence)
}

// WAVDecoder turns WAV blobs into ebiten players on a shared audio context.
type WAVDecoder struct {
	sampleRate int
}

func NewWAVDecoder(sampleRate int) (*WAVDecoder, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if _, err := sharedAudioContext(sampleRate); err != nil {
		return nil, err
	}
	return &WAVDecoder{sampleRate: sampleRate}, nil
}

func (d *WAVDecoder) Decode(data []byte) (Playback, error) {
	ctx, err := sharedAudioContext(d.sampleRate)
	if err != nil {
		return nil, err
	}
	stream, err := wav.DecodeWithSampleRate(d.sampleRate, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	pb := &ebitenPlayback{done: make(chan struct{})}
	pl, err := ctx.NewPlayer(&eofReader{src: stream, signal: pb.ended})
	if err != nil {
		return nil, fmt.Errorf("new player: %w", err)
	}
	pb.player = pl
	return pb, nil
}

// player is the part of *ebitaudio.Player a playback drives.
type player interface {
	Play()
	Pause()
	Rewind() error
	Close() error
}

type ebitenPlayback struct {
	mu     sync.Mutex
	player player
	closed bool

	done chan struct{}
	once sync.Once
}

func (p *ebitenPlayback) finish() {
	p.once.Do(func() { close(p.done) })
}

// ended runs on the player's read path, so the close happens elsewhere.
func (p *ebitenPlayback) ended() {
	select {
	case <-p.done:
		return
	default:
	}
	p.finish()
	go func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.closeLocked()
	}()
}

func (p *ebitenPlayback) closeLocked() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.player.Close()
}

func (p *ebitenPlayback) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("playback already closed")
	}
	p.player.Play()
	return nil
}

// Stop pauses, rewinds to the start and releases the player.
func (p *ebitenPlayback) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.finish()
	if p.closed {
		return nil
	}
	p.player.Pause()
	err := p.player.Rewind()
	if cerr := p.closeLocked(); err == nil {
		err = cerr
	}
	return err
}

func (p *ebitenPlayback) Done() <-chan struct{} { return p.done }
