// Package pitchpad drives a canvas with four buttons: play the current
// recording, switch recordings, play the pitch-only audio, and plot the pitch
// trajectory. Pointer gestures arrive as status events; each one is
// hit-tested against the buttons, may start or stop audio or a fetch, and
// ends with a redraw.
package pitchpad

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cbegin/pitchpad-go/internal/api"
	"github.com/cbegin/pitchpad-go/internal/audio"
	"github.com/cbegin/pitchpad-go/internal/canvas"
	"github.com/cbegin/pitchpad-go/internal/frequency"
	"github.com/cbegin/pitchpad-go/internal/geometry"
	"github.com/cbegin/pitchpad-go/internal/icons"
	"github.com/cbegin/pitchpad-go/internal/status"
	"github.com/cbegin/pitchpad-go/internal/trajectory"
)

const dimmedAlpha = 0.5

// SharedState is the externally owned status the controller publishes to.
type SharedState interface {
	IsInTheButton() bool
	SetIsInTheButton(v bool)
	SetMinFrequency(f float64)
	SetMaxFrequency(f float64)
}

// Controller owns the button state, reacts to status events and publishes
// isInTheButton and the frequency range to its SharedState.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	canvas canvas.Context
	shared SharedState
	client *api.Client
	audio  *audio.Bridge
	freq   *frequency.Updater
	plot   *trajectory.Renderer
	icons  *icons.Set

	mu             sync.Mutex
	dimmed         [geometry.NumButtons]bool
	previousStatus status.Status
	audioIndex     int
	active         audio.Playback

	drawMu sync.Mutex
	wg     sync.WaitGroup
}

// New creates a Controller drawing onto cv and publishing to shared.
func New(cv canvas.Context, shared SharedState, opts ...Option) (*Controller, error) {
	if cv == nil {
		return nil, errors.New("canvas is required")
	}
	if shared == nil {
		return nil, errors.New("shared state is required")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	client := cfg.client
	if client == nil {
		client = api.NewClient(cfg.baseURL, api.WithTimeout(cfg.timeout), api.WithLogger(cfg.log))
	}
	decoder := cfg.decoder
	if decoder == nil {
		d, err := audio.NewWAVDecoder(cfg.sampleRate)
		if err != nil {
			return nil, err
		}
		decoder = d
	}
	set := cfg.icons
	if set == nil {
		set = icons.NewSet(icons.WithLogger(cfg.log))
		set.Load(cfg.ctx, icons.Builtin{})
	}

	ctx, cancel := context.WithCancel(cfg.ctx)
	plot := trajectory.NewRenderer(cfg.style)
	return &Controller{
		ctx:    ctx,
		cancel: cancel,
		log:    cfg.log,
		canvas: cv,
		shared: shared,
		client: client,
		audio:  audio.NewBridge(client, decoder, audio.WithLogger(cfg.log)),
		freq:   frequency.NewUpdater(client, plot, shared, frequency.WithLogger(cfg.log)),
		plot:   plot,
		icons:  set,
	}, nil
}

// Attach subscribes the controller to src and schedules the first redraw for
// when every icon has loaded. The returned func unsubscribes.
func (c *Controller) Attach(src status.Source) (detach func()) {
	unsubscribe := src.Subscribe(c.HandleStatus)
	c.icons.OnReady(c.Redraw)
	return unsubscribe
}

// HandleStatus processes one status event and redraws the buttons.
func (c *Controller) HandleStatus(ev status.Event) {
	if !ev.Status.Gesture() {
		return
	}
	c.handlePosition(ev.Position.X, ev.Position.Y, ev.Status)
	c.Redraw()
}

func (c *Controller) handlePosition(x, y float64, st status.Status) {
	size := c.canvas.Size()
	inButton := false

	c.mu.Lock()
	if geometry.IsInside(geometry.Green, x, y, size) {
		inButton = true
		if st == status.StartDrawing {
			c.dimmed[geometry.Green] = true
			c.playAudio(c.client.WavFileURL(c.audioIndex))
		} else if st.Released() {
			c.dimmed[geometry.Green] = false
			c.stopAudio()
		}
	}

	if geometry.IsInside(geometry.Cyan, x, y, size) {
		inButton = true
		if st == status.StartDrawing {
			c.dimmed[geometry.Cyan] = true
		} else if st.Released() {
			c.dimmed[geometry.Cyan] = false
		}
		// Switch once the press turns into a drag, not on the press itself.
		if c.previousStatus == status.StartDrawing && st == status.Drawing {
			c.switchAudio()
		}
		c.previousStatus = st
	}

	if geometry.IsInside(geometry.Aux1, x, y, size) {
		inButton = true
		if st == status.StartDrawing {
			c.dimmed[geometry.Aux1] = true
			c.playAudio(c.client.PitchAudioURL())
		} else if st.Released() {
			c.dimmed[geometry.Aux1] = false
			c.stopAudio()
		}
	}

	if geometry.IsInside(geometry.Aux2, x, y, size) {
		inButton = true
		if st == status.StartDrawing {
			c.dimmed[geometry.Aux2] = true
			c.fetchFrequencies(c.client.PitchJSONURL())
		} else if st.Released() {
			c.dimmed[geometry.Aux2] = false
		}
	}
	c.mu.Unlock()

	if c.shared.IsInTheButton() != inButton {
		c.shared.SetIsInTheButton(inButton)
	}
}

// playAudio must be called with c.mu held.
func (c *Controller) playAudio(url string) {
	err := c.audio.Play(c.ctx, url, func(p audio.Playback) {
		c.mu.Lock()
		c.active = p
		c.mu.Unlock()
		go c.forget(p)
	})
	if errors.Is(err, audio.ErrBusy) {
		c.log.Debug("audio already playing, request dropped", "url", url)
	}
}

// forget drops the stored handle once p has ended, so a later release cannot
// stop a playback it does not own.
func (c *Controller) forget(p audio.Playback) {
	select {
	case <-p.Done():
	case <-c.ctx.Done():
		return
	}
	c.mu.Lock()
	if c.active == p {
		c.active = nil
	}
	c.mu.Unlock()
}

// stopAudio must be called with c.mu held.
func (c *Controller) stopAudio() {
	p := c.active
	c.active = nil
	c.audio.Stop(p)
}

func (c *Controller) switchAudio() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		idx, err := c.client.SwitchWavFile(c.ctx)
		if err != nil {
			c.log.Error("error switching wav file", "error", err)
			return
		}
		c.mu.Lock()
		c.audioIndex = idx
		c.mu.Unlock()
		c.log.Info("switched wav file", "index", idx)
	}()
}

func (c *Controller) fetchFrequencies(url string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.freq.FetchAndUpdate(c.ctx, url, c.canvas); err != nil {
			c.log.Error("error fetching pitch json", "url", url, "error", err)
		}
	}()
}

// Redraw repaints the four buttons, at half opacity while pressed.
func (c *Controller) Redraw() {
	c.mu.Lock()
	dimmed := c.dimmed
	c.mu.Unlock()

	c.drawMu.Lock()
	defer c.drawMu.Unlock()
	regions := geometry.Regions(c.canvas.Size())
	for _, r := range regions {
		c.canvas.ClearRect(r.X, r.Y, r.W, r.H)
	}
	for _, b := range geometry.Buttons {
		alpha := 1.0
		if dimmed[b] {
			alpha = dimmedAlpha
		}
		r := regions[b]
		c.canvas.SetGlobalAlpha(alpha)
		c.canvas.DrawImage(c.icons.Image(b), r.X, r.Y, r.W, r.H)
	}
	c.canvas.SetGlobalAlpha(1)
}

// Dimmed reports whether b is drawn in its pressed state.
func (c *Controller) Dimmed(b geometry.Button) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimmed[b]
}

// AudioIndex is the recording the green button plays.
func (c *Controller) AudioIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audioIndex
}

// IsPlaying reports whether an audio request or playback holds the guard.
func (c *Controller) IsPlaying() bool {
	return c.audio.IsPlaying()
}

// TrajectoryData returns a copy of every plotted segment since the last clear.
func (c *Controller) TrajectoryData() []trajectory.Segment {
	return c.plot.Data()
}

// ClearTrajectoryData drops the accumulated trajectory without touching the canvas.
func (c *Controller) ClearTrajectoryData() {
	c.plot.Clear()
}

// ReplayTrajectory strokes the accumulated trajectory onto p.
func (c *Controller) ReplayTrajectory(p trajectory.Path) {
	c.plot.Replay(p)
}

// Wait blocks until every in-flight request has completed.
func (c *Controller) Wait() {
	c.wg.Wait()
	c.audio.Wait()
}

// Close cancels outstanding requests, stops playback and waits for
// background work to finish.
func (c *Controller) Close() {
	c.cancel()
	c.Wait()
	c.mu.Lock()
	c.stopAudio()
	c.mu.Unlock()
}
