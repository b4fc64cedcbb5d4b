package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yok-tottii/voicenote/internal/audio"
	"github.com/yok-tottii/voicenote/internal/failure"
	"github.com/yok-tottii/voicenote/internal/logger"
	"github.com/yok-tottii/voicenote/internal/permissions"
	"github.com/yok-tottii/voicenote/internal/preview"
	"github.com/yok-tottii/voicenote/internal/recording"
)

var (
	// ErrIllegalIntent is returned for an intent that the current mode does not offer
	ErrIllegalIntent = errors.New("intent not available in current mode")
	// ErrNotMounted is returned by Dispatch before Mount
	ErrNotMounted = errors.New("composer not mounted")
	// ErrUnmounted is returned once the composer has been torn down
	ErrUnmounted = errors.New("composer unmounted")
	// ErrMicrophoneDenied is wrapped by the PermissionDenied failure
	ErrMicrophoneDenied = errors.New("microphone access denied")
)

// Authorizer answers whether capture may begin
type Authorizer interface {
	EnsureCaptureAuthorized(ctx context.Context) (permissions.Decision, error)
}

// Callbacks connect the controller to the host. Any of them may be nil.
type Callbacks struct {
	OnSendText        func(text string)
	OnSendAttachments func()
	OnSendAudio       func(artifact recording.Artifact)
	OnDiscardAudio    func(artifact recording.Artifact)
	OnModeChange      func(mode Mode)
	OnFailure         func(err error)
	OnMaxDuration     func(limit time.Duration)
}

// Config holds configuration for the controller
type Config struct {
	MaxRecordTime time.Duration // Zero disables the auto-stop
	Session       recording.Config
	Preview       preview.Config
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxRecordTime: 5 * time.Minute,
		Session:       recording.DefaultConfig(),
		Preview:       preview.DefaultConfig(),
	}
}

// Deps are the collaborators the controller instantiates hardware from
type Deps struct {
	Gate              Authorizer
	NewCaptureDriver  func() (audio.CaptureDriver, error)
	NewPlaybackDriver func() (audio.PlaybackDriver, error)
	Logger            *logger.Logger
}

type request struct {
	intent Intent
	reply  chan error
}

const (
	lifecycleNew = iota
	lifecycleMounted
	lifecycleUnmounted
)

// Controller is the composer state machine. Intents are queued and handled
// one at a time on a single goroutine, hardware calls included.
type Controller struct {
	config    Config
	deps      Deps
	callbacks Callbacks
	log       *logger.Logger

	mu        sync.Mutex
	mode      Mode
	draft     Draft
	lifecycle int
	cancel    context.CancelFunc

	// Unbounded FIFO shared by Dispatch and Post; wake holds one pending signal
	queue []request
	wake  chan struct{}
	done  chan struct{}

	// Owned by the event loop
	session *recording.Session
	elapsed <-chan time.Duration
	player  *preview.Player
	poll    *time.Ticker
}

// New creates a controller in TextEntry. Call Mount to start it.
func New(config Config, deps Deps, callbacks Callbacks) *Controller {
	return &Controller{
		config:    config,
		deps:      deps,
		callbacks: callbacks,
		log:       deps.Logger,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Mount starts the event loop
func (c *Controller) Mount() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.lifecycle {
	case lifecycleMounted:
		return nil
	case lifecycleUnmounted:
		return ErrUnmounted
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.lifecycle = lifecycleMounted
	go c.run(ctx)

	c.log.Debug("composer mounted")
	return nil
}

// Unmount aborts any take, disposes any preview and stops the event loop.
// It returns after the hardware has been released. Safe to call more than once.
func (c *Controller) Unmount() {
	c.mu.Lock()
	switch c.lifecycle {
	case lifecycleUnmounted:
		c.mu.Unlock()
		<-c.done
		return
	case lifecycleNew:
		c.lifecycle = lifecycleUnmounted
		close(c.done)
		c.mu.Unlock()
		return
	}
	c.lifecycle = lifecycleUnmounted
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	<-c.done
	c.log.Debug("composer unmounted")
}

// Done is closed once the controller has been unmounted
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Mode returns a snapshot of the current mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Draft returns the last draft supplied by the host
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Controls returns the affordances for the current mode and draft
func (c *Controller) Controls() Controls {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ControlsFor(c.mode, c.draft)
}

// Dispatch queues an intent and waits until it has been handled
func (c *Controller) Dispatch(ctx context.Context, intent Intent) error {
	c.mu.Lock()
	lifecycle := c.lifecycle
	c.mu.Unlock()
	switch lifecycle {
	case lifecycleNew:
		return ErrNotMounted
	case lifecycleUnmounted:
		return ErrUnmounted
	}

	reply := make(chan error, 1)
	c.enqueue(request{intent: intent, reply: reply})

	select {
	case err := <-reply:
		return err
	case <-c.done:
		return ErrUnmounted
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues an intent without waiting for it. It never blocks, so UI
// goroutines may call it while the loop is busy. Intents posted after
// Unmount are dropped.
func (c *Controller) Post(intent Intent) {
	c.mu.Lock()
	unmounted := c.lifecycle == lifecycleUnmounted
	c.mu.Unlock()
	if unmounted {
		return
	}
	c.enqueue(request{intent: intent})
}

func (c *Controller) enqueue(req request) {
	c.mu.Lock()
	c.queue = append(c.queue, req)
	c.mu.Unlock()
	c.signal()
}

func (c *Controller) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// dequeue pops the oldest request; more reports whether others remain
func (c *Controller) dequeue() (req request, ok, more bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return request{}, false, false
	}
	req = c.queue[0]
	c.queue[0] = request{}
	c.queue = c.queue[1:]
	return req, true, len(c.queue) > 0
}

// Pending returns the number of queued intents not yet handled
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)
	defer c.teardown()

	for {
		var pollC <-chan time.Time
		if c.poll != nil {
			pollC = c.poll.C
		}

		select {
		case <-ctx.Done():
			return
		case <-c.wake:
			req, ok, more := c.dequeue()
			if !ok {
				continue
			}
			// One intent per turn so elapsed ticks and polls interleave
			if more {
				c.signal()
			}
			err := c.handle(ctx, req.intent)
			if req.reply != nil {
				req.reply <- err
			}
		case elapsed, ok := <-c.elapsed:
			if !ok {
				c.elapsed = nil
				continue
			}
			c.onElapsed(ctx, elapsed)
		case <-pollC:
			c.onPoll()
		}
	}
}

func (c *Controller) handle(ctx context.Context, intent Intent) error {
	mode := c.Mode()
	if !Allowed(mode.Kind, intent.Kind) {
		c.log.Debug("ignored %s in %s", intent.Kind, mode.Kind)
		return fmt.Errorf("%w: %s in %s", ErrIllegalIntent, intent.Kind, mode.Kind)
	}

	switch intent.Kind {
	case IntentSetDraft:
		c.mu.Lock()
		c.draft = intent.Draft
		c.mu.Unlock()
		return nil
	case IntentPrimary:
		draft := c.Draft()
		switch ResolvePrimaryAction(mode.Kind, draft) {
		case ActionSend:
			c.sendDraft(draft)
			return nil
		case ActionRecord:
			return c.beginRecording(ctx)
		}
		return nil
	case IntentStop:
		return c.finishRecording()
	case IntentCancel:
		c.abortRecording()
		c.setMode(Mode{Kind: TextEntry})
		return nil
	case IntentTogglePlayback:
		return c.togglePlayback()
	case IntentDiscard:
		c.leavePreview(false)
		return nil
	case IntentSend:
		c.leavePreview(true)
		return nil
	}
	return nil
}

func (c *Controller) sendDraft(draft Draft) {
	if strings.TrimSpace(draft.Text) != "" && c.callbacks.OnSendText != nil {
		c.callbacks.OnSendText(draft.Text)
	}
	if draft.Attachments > 0 && c.callbacks.OnSendAttachments != nil {
		c.callbacks.OnSendAttachments()
	}
}

func (c *Controller) beginRecording(ctx context.Context) error {
	if c.deps.Gate != nil {
		decision, err := c.deps.Gate.EnsureCaptureAuthorized(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return c.fail(err)
		}
		if decision != permissions.Granted {
			return c.fail(failure.New(failure.PermissionDenied, "record", ErrMicrophoneDenied))
		}
	}

	driver, err := c.deps.NewCaptureDriver()
	if err != nil {
		return c.fail(failure.Translate("record", fmt.Errorf("failed to create capture driver: %w", err)))
	}

	session := recording.NewSession(driver, c.config.Session, c.log)
	c.session = session

	if err := session.Prepare(ctx); err != nil {
		return c.recordingFailed(ctx, err)
	}
	if err := session.Start(ctx); err != nil {
		return c.recordingFailed(ctx, err)
	}

	c.elapsed = session.Elapsed()
	c.setMode(Mode{Kind: Recording})
	return nil
}

func (c *Controller) recordingFailed(ctx context.Context, err error) error {
	c.abortRecording()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.fail(err)
}

func (c *Controller) onElapsed(ctx context.Context, elapsed time.Duration) {
	if c.session == nil {
		return
	}
	c.setMode(Mode{Kind: Recording, Elapsed: elapsed})

	limit := c.config.MaxRecordTime
	if limit <= 0 || elapsed < limit {
		return
	}

	c.log.Info("maximum recording time reached (%v)", limit)
	if err := c.finishRecording(); err != nil {
		return
	}
	if c.callbacks.OnMaxDuration != nil {
		c.callbacks.OnMaxDuration(limit)
	}
}

// finishRecording stops the take and opens the preview. The session has
// released the microphone before the player is created.
func (c *Controller) finishRecording() error {
	session := c.session
	c.session = nil
	c.elapsed = nil

	artifact, err := session.Stop()
	if err != nil {
		c.setMode(Mode{Kind: TextEntry})
		return c.fail(err)
	}
	if artifact == nil {
		c.setMode(Mode{Kind: TextEntry})
		return nil
	}

	driver, err := c.deps.NewPlaybackDriver()
	if err != nil {
		c.dropArtifact(*artifact)
		c.setMode(Mode{Kind: TextEntry})
		return c.fail(failure.New(failure.PlaybackFailed, "preview", err))
	}

	player, err := preview.NewPlayer(driver, *artifact, c.config.Preview, c.log)
	if err != nil {
		c.dropArtifact(*artifact)
		c.setMode(Mode{Kind: TextEntry})
		return c.fail(err)
	}

	c.player = player
	c.setMode(c.previewMode())
	return nil
}

func (c *Controller) abortRecording() {
	if c.session == nil {
		return
	}
	if err := c.session.Abort(); err != nil {
		c.log.Warn("failed to abort recording: %v", err)
	}
	c.session = nil
	c.elapsed = nil
}

func (c *Controller) togglePlayback() error {
	if err := c.player.Toggle(); err != nil {
		artifact := c.player.Artifact()
		c.closePlayer()
		c.dropArtifact(artifact)
		c.setMode(Mode{Kind: TextEntry})
		return c.fail(err)
	}

	c.syncPolling()
	c.setMode(c.previewMode())
	return nil
}

func (c *Controller) onPoll() {
	if c.player == nil {
		c.syncPolling()
		return
	}
	c.player.Poll()
	c.syncPolling()
	c.setMode(c.previewMode())
}

// leavePreview pauses and disposes the player and hands the artifact on
func (c *Controller) leavePreview(send bool) {
	artifact := c.player.Artifact()
	if err := c.player.Pause(); err != nil {
		c.log.Warn("failed to pause preview: %v", err)
	}
	c.closePlayer()
	c.setMode(Mode{Kind: TextEntry})

	if send {
		c.log.Info("sending voice note %s (%ds)", artifact.ID, artifact.DurationSeconds)
		if c.callbacks.OnSendAudio != nil {
			c.callbacks.OnSendAudio(artifact)
		}
		return
	}
	c.dropArtifact(artifact)
}

func (c *Controller) closePlayer() {
	if c.player == nil {
		return
	}
	if err := c.player.Dispose(); err != nil {
		c.log.Warn("failed to dispose preview: %v", err)
	}
	c.player = nil
	c.syncPolling()
}

func (c *Controller) dropArtifact(artifact recording.Artifact) {
	c.log.Debug("discarding voice note %s", artifact.ID)
	if c.callbacks.OnDiscardAudio != nil {
		c.callbacks.OnDiscardAudio(artifact)
	}
}

// syncPolling runs the natural-end ticker only while a preview is playing
func (c *Controller) syncPolling() {
	playing := c.player != nil && c.player.State() == preview.Playing
	switch {
	case playing && c.poll == nil:
		c.poll = time.NewTicker(c.player.PollInterval())
	case !playing && c.poll != nil:
		c.poll.Stop()
		c.poll = nil
	}
}

func (c *Controller) previewMode() Mode {
	artifact := c.player.Artifact()
	return Mode{
		Kind:     Preview,
		Artifact: &artifact,
		Playback: c.player.State(),
		Position: c.player.Position(),
	}
}

// teardown releases whichever hardware the loop still holds
func (c *Controller) teardown() {
	if c.session != nil {
		c.log.Info("composer torn down while recording")
		c.abortRecording()
	}
	if c.player != nil {
		artifact := c.player.Artifact()
		c.closePlayer()
		c.dropArtifact(artifact)
	}
	c.syncPolling()
	c.setMode(Mode{Kind: TextEntry})
}

func (c *Controller) setMode(mode Mode) {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()

	if c.callbacks.OnModeChange != nil {
		c.callbacks.OnModeChange(mode)
	}
}

// fail surfaces err to the host and returns it. Every failure lands in TextEntry.
func (c *Controller) fail(err error) error {
	c.log.Error("composer failure: %v", err)
	if c.callbacks.OnFailure != nil {
		c.callbacks.OnFailure(err)
	}
	return err
}
