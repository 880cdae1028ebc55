package pitchpad

import (
	"context"
	"log/slog"
	"time"

	"github.com/cbegin/pitchpad-go/internal/api"
	"github.com/cbegin/pitchpad-go/internal/audio"
	"github.com/cbegin/pitchpad-go/internal/icons"
	"github.com/cbegin/pitchpad-go/internal/trajectory"
)

// DefaultSampleRate is the audio output rate used when none is configured.
const DefaultSampleRate = 44100

type Option func(*config)

type config struct {
	ctx        context.Context
	baseURL    string
	timeout    time.Duration
	client     *api.Client
	decoder    audio.Decoder
	sampleRate int
	icons      *icons.Set
	style      trajectory.Style
	log        *slog.Logger
}

func defaultConfig() config {
	return config{
		ctx:        context.Background(),
		baseURL:    api.DefaultBaseURL,
		sampleRate: DefaultSampleRate,
		style:      trajectory.DefaultStyle,
		log:        slog.Default(),
	}
}

// WithContext sets the parent context of every background request.
func WithContext(ctx context.Context) Option {
	return func(cfg *config) {
		cfg.ctx = ctx
	}
}

func WithAPIBaseURL(url string) Option {
	return func(cfg *config) {
		cfg.baseURL = url
	}
}

// WithTimeout bounds each backend request. Zero, the default, never times out.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}

// WithClient replaces the backend client; WithAPIBaseURL and WithTimeout are
// then ignored.
func WithClient(c *api.Client) Option {
	return func(cfg *config) {
		cfg.client = c
	}
}

// WithDecoder replaces the WAV decoder. Without it the controller opens the
// shared audio device at the configured sample rate.
func WithDecoder(d audio.Decoder) Option {
	return func(cfg *config) {
		cfg.decoder = d
	}
}

func WithSampleRate(rate int) Option {
	return func(cfg *config) {
		cfg.sampleRate = rate
	}
}

// WithIcons supplies an icon set. Without it the built-in icons are used.
func WithIcons(s *icons.Set) Option {
	return func(cfg *config) {
		cfg.icons = s
	}
}

func WithTrajectoryStyle(st trajectory.Style) Option {
	return func(cfg *config) {
		cfg.style = st
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.log = l
	}
}
