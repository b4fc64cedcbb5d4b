package preview

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yok-tottii/voicenote/internal/failure"
	"github.com/yok-tottii/voicenote/internal/recording"
)

type fakePlayback struct {
	mu       sync.Mutex
	openErr  error
	length   time.Duration
	pos      time.Duration
	playing  bool
	seeks    []time.Duration
	closes   int
	openPath string
}

func (f *fakePlayback) Open(path string, deviceID int) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return 0, f.openErr
	}
	f.openPath = path
	return f.length, nil
}

func (f *fakePlayback) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
	return nil
}

func (f *fakePlayback) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	return nil
}

func (f *fakePlayback) Seek(pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = pos
	f.seeks = append(f.seeks, pos)
	return nil
}

func (f *fakePlayback) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakePlayback) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	f.closes++
	return nil
}

func (f *fakePlayback) setPosition(pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = pos
}

func testArtifact() recording.Artifact {
	return recording.Artifact{Location: "/tmp/take.wav", DurationSeconds: 4, Duration: 3400 * time.Millisecond}
}

func newTestPlayer(t *testing.T, driver *fakePlayback) *Player {
	t.Helper()
	p, err := NewPlayer(driver, testArtifact(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewPlayer failed: %v", err)
	}
	return p
}

func TestPlaybackState_String(t *testing.T) {
	tests := []struct {
		state    PlaybackState
		expected string
	}{
		{Idle, "Idle"},
		{Playing, "Playing"},
		{Paused, "Paused"},
		{PlaybackState(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestNewPlayer(t *testing.T) {
	driver := &fakePlayback{length: 3400 * time.Millisecond}
	p := newTestPlayer(t, driver)

	if p.State() != Idle {
		t.Errorf("Expected Idle, got %v", p.State())
	}
	if p.Duration() != 3400*time.Millisecond {
		t.Errorf("Expected driver duration, got %v", p.Duration())
	}
	if driver.openPath != "/tmp/take.wav" {
		t.Errorf("Expected artifact location to be opened, got %q", driver.openPath)
	}
}

func TestNewPlayer_FallbackDuration(t *testing.T) {
	p := newTestPlayer(t, &fakePlayback{})

	if p.Duration() != 4*time.Second {
		t.Errorf("Expected whole-second fallback, got %v", p.Duration())
	}
}

func TestEmptyClipEndsOnFirstPoll(t *testing.T) {
	// A zero-sample take reports no length and its position never moves
	driver := &fakePlayback{}
	p := newTestPlayer(t, driver)

	for round := 0; round < 2; round++ {
		if err := p.Play(); err != nil {
			t.Fatalf("Play failed: %v", err)
		}
		if state := p.Poll(); state != Idle {
			t.Fatalf("round %d: expected Idle after the first poll, got %v", round, state)
		}
		if driver.playing {
			t.Errorf("round %d: driver should be paused at end", round)
		}
	}
	if p.Duration() != 4*time.Second {
		t.Errorf("Expected whole-second fallback to stay displayed, got %v", p.Duration())
	}
}

func TestNewPlayer_OpenFailure(t *testing.T) {
	driver := &fakePlayback{openErr: errors.New("unreadable")}

	_, err := NewPlayer(driver, testArtifact(), DefaultConfig(), nil)
	if !failure.Is(err, failure.PlaybackFailed) {
		t.Errorf("Expected PlaybackFailed, got %v", err)
	}
	if driver.closes != 1 {
		t.Errorf("Expected driver to be released, closes=%d", driver.closes)
	}
}

func TestPlayPause(t *testing.T) {
	driver := &fakePlayback{length: 3 * time.Second}
	p := newTestPlayer(t, driver)

	if err := p.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if p.State() != Playing || !driver.playing {
		t.Fatal("Expected Playing")
	}

	driver.setPosition(time.Second)
	if err := p.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if p.State() != Paused || driver.playing {
		t.Fatal("Expected Paused")
	}
	if p.Position() != time.Second {
		t.Errorf("Pause should keep position, got %v", p.Position())
	}

	// Resume continues from the kept position
	if err := p.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if len(driver.seeks) != 0 {
		t.Errorf("Resume must not seek, got %v", driver.seeks)
	}
}

func TestPauseWhenIdle(t *testing.T) {
	p := newTestPlayer(t, &fakePlayback{length: time.Second})

	if err := p.Pause(); err != nil {
		t.Errorf("Pause on Idle should be a no-op, got %v", err)
	}
	if p.State() != Idle {
		t.Errorf("Expected Idle, got %v", p.State())
	}
}

func TestToggle(t *testing.T) {
	p := newTestPlayer(t, &fakePlayback{length: time.Second})

	p.Toggle()
	if p.State() != Playing {
		t.Errorf("Expected Playing, got %v", p.State())
	}
	p.Toggle()
	if p.State() != Paused {
		t.Errorf("Expected Paused, got %v", p.State())
	}
}

func TestNaturalEndReplaysFromStart(t *testing.T) {
	driver := &fakePlayback{length: 3 * time.Second}
	p := newTestPlayer(t, driver)

	p.Play()

	driver.setPosition(time.Second)
	if state := p.Poll(); state != Playing {
		t.Fatalf("Expected Playing mid-clip, got %v", state)
	}

	// Within tolerance of the end counts as finished
	driver.setPosition(2950 * time.Millisecond)
	if state := p.Poll(); state != Idle {
		t.Fatalf("Expected Idle at end, got %v", state)
	}
	if driver.playing {
		t.Error("Driver should be paused at end")
	}

	if err := p.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if len(driver.seeks) != 1 || driver.seeks[0] != 0 {
		t.Errorf("Expected a single seek to 0, got %v", driver.seeks)
	}
	if p.Position() != 0 {
		t.Errorf("Expected replay from 0, got %v", p.Position())
	}
}

func TestPlayAtEndRewinds(t *testing.T) {
	driver := &fakePlayback{length: 3 * time.Second, pos: 3 * time.Second}
	p := newTestPlayer(t, driver)

	p.Play()
	if p.Position() != 0 {
		t.Errorf("Expected rewind before play, got %v", p.Position())
	}
}

func TestDispose(t *testing.T) {
	driver := &fakePlayback{length: time.Second}
	p := newTestPlayer(t, driver)
	p.Play()

	if err := p.Dispose(); err != nil {
		t.Fatalf("Dispose failed: %v", err)
	}
	if err := p.Dispose(); err != nil {
		t.Errorf("Second Dispose failed: %v", err)
	}
	if driver.closes != 1 {
		t.Errorf("Expected one close, got %d", driver.closes)
	}

	err := p.Play()
	if !failure.Is(err, failure.PlaybackFailed) || !errors.Is(err, ErrDisposed) {
		t.Errorf("Expected PlaybackFailed after dispose, got %v", err)
	}
	if state := p.Poll(); state != Idle {
		t.Errorf("Expected Idle after dispose, got %v", state)
	}
}
