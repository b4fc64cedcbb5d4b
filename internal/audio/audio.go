package audio

import "time"

// Device represents an audio device
type Device struct {
	ID        int
	Name      string
	IsDefault bool
}

// LatencyMode defines the latency priority
type LatencyMode int

const (
	// LowLatency prioritizes low latency (real-time)
	LowLatency LatencyMode = iota
	// HighStability prioritizes stability (larger buffer)
	HighStability
)

// DefaultDevice selects the system default device
const DefaultDevice = -1

// Config holds audio configuration
type Config struct {
	DeviceID   int
	SampleRate int
	Channels   int
	Latency    LatencyMode
}

// DefaultConfig returns the fixed voice-note capture preset.
// Sample rate: 16kHz, Channels: 1 (mono), 16-bit PCM, HighStability latency.
// A voice note at this preset costs 32 KB/s before any container overhead.
func DefaultConfig() Config {
	return Config{
		DeviceID:   DefaultDevice,
		SampleRate: 16000,
		Channels:   1,
		Latency:    HighStability,
	}
}

// CaptureDriver is the microphone side of the audio hardware.
// One driver instance backs exactly one take.
type CaptureDriver interface {
	// ListDevices returns a list of available audio input devices
	ListDevices() ([]Device, error)

	// Open acquires the input device with the given configuration
	Open(config Config) error

	// Start starts capturing audio
	Start() error

	// Stop stops capturing and returns the captured PCM samples
	Stop() ([]int16, error)

	// IsRecording returns whether capture is currently active
	IsRecording() bool

	// Close releases the device. Safe to call more than once.
	Close() error
}

// PlaybackDriver is the speaker side of the audio hardware
type PlaybackDriver interface {
	// Open loads the clip at path onto the output device and returns its length
	Open(path string, deviceID int) (time.Duration, error)

	// Play starts or resumes output from the current position
	Play() error

	// Pause suspends output, keeping the position
	Pause() error

	// Seek moves the playback position
	Seek(pos time.Duration) error

	// Position returns the current playback position
	Position() time.Duration

	// Close releases the device. Safe to call more than once.
	Close() error
}
