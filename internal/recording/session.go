// Package recording owns the capture hardware for a single take.
package recording

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yok-tottii/voicenote/internal/audio"
	"github.com/yok-tottii/voicenote/internal/failure"
	"github.com/yok-tottii/voicenote/internal/logger"
)

// State represents the lifecycle state of a take
type State int

const (
	// Uninitialized means the hardware has not been touched yet
	Uninitialized State = iota
	// Preparing means the recorder is being (or has been) acquired
	Preparing
	// Active means audio is being captured
	Active
	// Stopped means the take was finalized into an artifact
	Stopped
	// Aborted means the take was dropped without an artifact
	Aborted
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Preparing:
		return "Preparing"
	case Active:
		return "Active"
	case Stopped:
		return "Stopped"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

var (
	// ErrPrepareFailed is wrapped by every failure to acquire or start the recorder
	ErrPrepareFailed = errors.New("recorder prepare failed")
	// ErrInvalidState is returned for calls that are illegal in the current state
	ErrInvalidState = errors.New("invalid session state")
)

// Config holds configuration for a recording session
type Config struct {
	Audio          audio.Config
	TickInterval   time.Duration // Elapsed sampling cadence
	PrepareTimeout time.Duration // Bound on Open and Start of the hardware
	Dir            string        // Artifact directory, empty means os.TempDir()
	Clock          func() time.Time
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Audio:          audio.DefaultConfig(),
		TickInterval:   150 * time.Millisecond,
		PrepareTimeout: 10 * time.Second,
	}
}

// Session is one take: Prepare, Start, then Stop or Abort.
// A session is used once; the composer creates a fresh one per take.
type Session struct {
	mu        sync.Mutex
	state     State
	prepared  bool
	holding   bool
	driver    audio.CaptureDriver
	config    Config
	now       func() time.Time
	startedAt time.Time
	elapsed   chan time.Duration
	stopTick  chan struct{}
	wg        sync.WaitGroup
	log       *logger.Logger
}

// NewSession creates a session that will drive the given capture hardware
func NewSession(driver audio.CaptureDriver, config Config, log *logger.Logger) *Session {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultConfig().TickInterval
	}
	if config.PrepareTimeout <= 0 {
		config.PrepareTimeout = DefaultConfig().PrepareTimeout
	}
	now := config.Clock
	if now == nil {
		now = time.Now
	}

	return &Session{
		state:   Uninitialized,
		driver:  driver,
		config:  config,
		now:     now,
		elapsed: make(chan time.Duration, 1),
		log:     log,
	}
}

// State returns the current session state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Holding reports whether the session may still hold the hardware handle
func (s *Session) Holding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holding
}

// Elapsed delivers the take's running length, sampled every TickInterval.
// Only the latest sample is kept. The channel is closed when capture ends.
func (s *Session) Elapsed() <-chan time.Duration {
	return s.elapsed
}

// ElapsedNow returns the running length of an active take
func (s *Session) ElapsedNow() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Active {
		return 0
	}
	return s.now().Sub(s.startedAt)
}

// Prepare acquires the recorder at the voice-note preset
func (s *Session) Prepare(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Uninitialized {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: prepare in %s", ErrInvalidState, state)
	}
	s.state = Preparing
	s.holding = true
	s.mu.Unlock()

	if err := s.runBounded(ctx, func() error { return s.driver.Open(s.config.Audio) }); err != nil {
		s.releaseAfter(err)
		return failure.New(failure.HardwareUnavailable, "prepare", fmt.Errorf("%w: %v", ErrPrepareFailed, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Preparing {
		return fmt.Errorf("%w: aborted during prepare", ErrInvalidState)
	}
	s.prepared = true
	s.log.Debug("recorder prepared: %d Hz, %d ch", s.config.Audio.SampleRate, s.config.Audio.Channels)
	return nil
}

// Start begins capture. Legal only after a successful Prepare.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Preparing || !s.prepared {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: start in %s", ErrInvalidState, state)
	}
	s.mu.Unlock()

	if err := s.runBounded(ctx, s.driver.Start); err != nil {
		s.releaseAfter(err)
		return failure.New(failure.HardwareUnavailable, "start", fmt.Errorf("%w: %v", ErrPrepareFailed, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Preparing {
		return fmt.Errorf("%w: aborted during start", ErrInvalidState)
	}

	s.state = Active
	s.startedAt = s.now()
	s.stopTick = make(chan struct{})
	s.wg.Add(1)
	go s.sample(s.startedAt, s.stopTick)

	s.log.Info("recording started")
	return nil
}

// errCallAbandoned marks a hardware call that outlived PrepareTimeout
var errCallAbandoned = errors.New("hardware call did not complete")

// runBounded runs a hardware call under PrepareTimeout. A call that
// outlives the deadline is left to finish and its handle is closed then,
// from the waiting goroutine. Drivers may hold their own lock for the whole
// call, so the handle must not be closed here.
func (s *Session) runBounded(ctx context.Context, call func() error) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.PrepareTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- call()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		go func() {
			<-done
			if err := s.driver.Close(); err != nil {
				s.log.Warn("failed to release late recorder: %v", err)
			}
			s.mu.Lock()
			s.holding = false
			s.mu.Unlock()
		}()
		return fmt.Errorf("%w: %w", errCallAbandoned, ctx.Err())
	}
}

// sample publishes the elapsed time until stop is closed
func (s *Session) sample(startedAt time.Time, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			elapsed := s.now().Sub(startedAt)
			// Replace an unread sample with the newer one
			select {
			case <-s.elapsed:
			default:
			}
			select {
			case s.elapsed <- elapsed:
			default:
			}
		}
	}
}

func (s *Session) stopSampler() {
	s.mu.Lock()
	stop := s.stopTick
	s.stopTick = nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	s.wg.Wait()
	close(s.elapsed)
}

// release closes the hardware handle and marks the session aborted unless
// it already reached a terminal state
func (s *Session) release() error {
	s.mu.Lock()
	if s.state != Stopped {
		s.state = Aborted
	}
	s.holding = false
	s.mu.Unlock()

	return s.driver.Close()
}

// releaseAfter releases the recorder after a failed hardware call. An
// abandoned call still owns the handle, so the session is only marked
// aborted and keeps holding until that call returns.
func (s *Session) releaseAfter(err error) {
	if errors.Is(err, errCallAbandoned) {
		s.setState(Aborted)
		return
	}
	s.release()
}

// Stop finalizes the take and releases the recorder. Calling Stop on a
// session that is not Active returns no artifact and no error.
func (s *Session) Stop() (*Artifact, error) {
	s.mu.Lock()
	if s.state != Active {
		s.mu.Unlock()
		return nil, nil
	}
	s.state = Stopped
	startedAt := s.startedAt
	s.mu.Unlock()

	s.stopSampler()
	length := s.now().Sub(startedAt)

	samples, stopErr := s.driver.Stop()
	closeErr := s.release()
	if stopErr != nil {
		s.setState(Aborted)
		return nil, failure.Translate("stop", fmt.Errorf("failed to stop capture: %w", stopErr))
	}
	if closeErr != nil {
		s.log.Warn("failed to release recorder: %v", closeErr)
	}

	artifact, err := s.persist(samples, length)
	if err != nil {
		s.setState(Aborted)
		return nil, failure.Translate("stop", err)
	}

	s.log.Info("recording stopped: %s (%ds, %d samples)", artifact.Location, artifact.DurationSeconds, len(samples))
	return artifact, nil
}

// Abort releases the recorder without producing an artifact
func (s *Session) Abort() error {
	s.mu.Lock()
	switch s.state {
	case Stopped, Aborted:
		s.mu.Unlock()
		return nil
	}
	wasActive := s.state == Active
	s.state = Aborted
	s.mu.Unlock()

	if wasActive {
		s.stopSampler()
	}

	if err := s.release(); err != nil {
		return failure.Translate("abort", fmt.Errorf("failed to release recorder: %w", err))
	}
	s.log.Info("recording aborted")
	return nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Session) persist(samples []int16, length time.Duration) (*Artifact, error) {
	dir := s.config.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	id := uuid.New()
	path := filepath.Join(dir, "voicenote-"+id.String()+".wav")

	clip := audio.Clip{
		Samples:    samples,
		SampleRate: s.config.Audio.SampleRate,
		Channels:   s.config.Audio.Channels,
	}
	if err := audio.WriteWAV(path, clip); err != nil {
		os.Remove(path)
		return nil, err
	}

	return &Artifact{
		ID:              id,
		Location:        path,
		DurationSeconds: WholeSeconds(length),
		Duration:        length,
		SampleRate:      clip.SampleRate,
		CreatedAt:       s.now(),
	}, nil
}

// WholeSeconds rounds a take's length up to whole seconds, never below one
func WholeSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
