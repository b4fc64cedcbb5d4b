// Package preview auditions a captured take before it is sent.
package preview

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yok-tottii/voicenote/internal/audio"
	"github.com/yok-tottii/voicenote/internal/failure"
	"github.com/yok-tottii/voicenote/internal/logger"
	"github.com/yok-tottii/voicenote/internal/recording"
)

// PlaybackState represents the audition state of a preview
type PlaybackState int

const (
	// Idle means nothing is playing and the next Play starts from the top
	Idle PlaybackState = iota
	// Playing means audio is being output
	Playing
	// Paused means output is suspended at the current position
	Paused
)

// String returns the string representation of the state
func (s PlaybackState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// ErrDisposed is wrapped by calls made after Dispose
var ErrDisposed = errors.New("player disposed")

// Config holds configuration for a preview player
type Config struct {
	DeviceID     int
	EndTolerance time.Duration // Distance from the end treated as finished
	PollInterval time.Duration // Natural-end detection cadence
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		DeviceID:     audio.DefaultDevice,
		EndTolerance: 100 * time.Millisecond,
		PollInterval: 150 * time.Millisecond,
	}
}

// Player owns the playback hardware for one artifact
type Player struct {
	mu       sync.Mutex
	driver   audio.PlaybackDriver
	artifact recording.Artifact
	config   Config
	duration time.Duration
	empty    bool // the driver has no samples to output
	state    PlaybackState
	replay   bool
	disposed bool
	log      *logger.Logger
}

// NewPlayer opens the artifact on the playback hardware
func NewPlayer(driver audio.PlaybackDriver, artifact recording.Artifact, config Config, log *logger.Logger) (*Player, error) {
	if config.EndTolerance <= 0 {
		config.EndTolerance = DefaultConfig().EndTolerance
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}

	duration, err := driver.Open(artifact.Location, config.DeviceID)
	if err != nil {
		driver.Close()
		return nil, failure.New(failure.PlaybackFailed, "open", fmt.Errorf("failed to load %s: %w", artifact.Location, err))
	}
	empty := duration <= 0
	if empty {
		duration = time.Duration(artifact.DurationSeconds) * time.Second
	}

	log.Debug("preview loaded: %s (%v)", artifact.Location, duration)

	return &Player{
		driver:   driver,
		artifact: artifact,
		config:   config,
		duration: duration,
		empty:    empty,
		state:    Idle,
		log:      log,
	}, nil
}

// Artifact returns the clip being auditioned
func (p *Player) Artifact() recording.Artifact {
	return p.artifact
}

// Duration returns the length of the clip
func (p *Player) Duration() time.Duration {
	return p.duration
}

// State returns the current playback state
func (p *Player) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// PollInterval returns how often Poll should be called while playing
func (p *Player) PollInterval() time.Duration {
	return p.config.PollInterval
}

// Position returns the current playback position
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return 0
	}
	return p.driver.Position()
}

// atEnd reports whether output has finished. The position of an empty
// clip never advances, so it is always at its end.
func (p *Player) atEnd(pos time.Duration) bool {
	if p.empty {
		return true
	}
	return pos >= p.duration-p.config.EndTolerance
}

// Play starts or resumes output. A finished clip restarts from the top.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return failure.New(failure.PlaybackFailed, "play", ErrDisposed)
	}
	if p.state == Playing {
		return nil
	}

	if p.replay || p.atEnd(p.driver.Position()) {
		if err := p.driver.Seek(0); err != nil {
			return failure.New(failure.PlaybackFailed, "play", fmt.Errorf("failed to rewind: %w", err))
		}
		p.replay = false
	}

	if err := p.driver.Play(); err != nil {
		return failure.New(failure.PlaybackFailed, "play", err)
	}
	p.state = Playing
	return nil
}

// Pause suspends output and keeps the position
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return failure.New(failure.PlaybackFailed, "pause", ErrDisposed)
	}
	if p.state != Playing {
		return nil
	}

	if err := p.driver.Pause(); err != nil {
		return failure.New(failure.PlaybackFailed, "pause", err)
	}
	p.state = Paused
	return nil
}

// Toggle plays when not playing and pauses otherwise
func (p *Player) Toggle() error {
	if p.State() == Playing {
		return p.Pause()
	}
	return p.Play()
}

// Poll samples the output position and settles a finished clip back to Idle
func (p *Player) Poll() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed || p.state != Playing {
		return p.state
	}
	if !p.atEnd(p.driver.Position()) {
		return p.state
	}

	if err := p.driver.Pause(); err != nil {
		p.log.Warn("failed to pause at end of preview: %v", err)
	}
	p.state = Idle
	p.replay = true
	p.log.Debug("preview reached end")
	return p.state
}

// Dispose releases the playback hardware. Safe to call more than once.
func (p *Player) Dispose() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return nil
	}
	p.disposed = true
	p.state = Idle

	if err := p.driver.Close(); err != nil {
		return failure.New(failure.PlaybackFailed, "dispose", err)
	}
	return nil
}
