package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// PortAudioDriver implements CaptureDriver using PortAudio
type PortAudioDriver struct {
	config      Config
	stream      *portaudio.Stream
	buffer      []int16
	mu          sync.Mutex
	recording   bool
	initialized bool
	terminated  bool
}

// NewPortAudioDriver creates a new PortAudio capture driver.
// PortAudio initialization is reference counted, so each take may own a driver.
func NewPortAudioDriver() (*PortAudioDriver, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &PortAudioDriver{
		buffer: make([]int16, 0, 16000*60), // one minute at the voice-note preset
	}, nil
}

// ListDevices returns a list of available audio input devices
func (d *PortAudioDriver) ListDevices() ([]Device, error) {
	return listDevices(func(dev *portaudio.DeviceInfo) bool { return dev.MaxInputChannels > 0 }, portaudio.DefaultInputDevice)
}

// ListOutputDevices returns a list of available audio output devices
func ListOutputDevices() ([]Device, error) {
	return listDevices(func(dev *portaudio.DeviceInfo) bool { return dev.MaxOutputChannels > 0 }, portaudio.DefaultOutputDevice)
}

// ListAllDevices initializes PortAudio just long enough to enumerate
// input and output devices
func ListAllDevices() (inputs, outputs []Device, err error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	inputs, err = listDevices(func(dev *portaudio.DeviceInfo) bool { return dev.MaxInputChannels > 0 }, portaudio.DefaultInputDevice)
	if err != nil {
		return nil, nil, err
	}
	outputs, err = ListOutputDevices()
	if err != nil {
		return nil, nil, err
	}
	return inputs, outputs, nil
}

func listDevices(keep func(*portaudio.DeviceInfo) bool, defaultDevice func() (*portaudio.DeviceInfo, error)) ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	def, err := defaultDevice()
	if err != nil {
		// If we can't get the default device, continue without marking any as default
		def = nil
	}

	var result []Device
	for i, dev := range devices {
		if !keep(dev) {
			continue
		}
		result = append(result, Device{
			ID:        i,
			Name:      dev.Name,
			IsDefault: def != nil && dev.Name == def.Name,
		})
	}

	return result, nil
}

func resolveDevice(id int, defaultDevice func() (*portaudio.DeviceInfo, error)) (*portaudio.DeviceInfo, error) {
	if id == DefaultDevice {
		device, err := defaultDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	if id < 0 || id >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", id)
	}
	return devices[id], nil
}

// Open opens the input stream with the given configuration
func (d *PortAudioDriver) Open(config Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.terminated {
		return fmt.Errorf("driver closed")
	}
	if d.recording {
		return fmt.Errorf("cannot open while recording")
	}
	if d.stream != nil {
		return fmt.Errorf("stream already open")
	}

	device, err := resolveDevice(config.DeviceID, portaudio.DefaultInputDevice)
	if err != nil {
		return err
	}

	if device.MaxInputChannels <= 0 {
		return fmt.Errorf("selected device '%s' (ID: %d) has no input channels (output-only device)",
			device.Name, config.DeviceID)
	}

	latency := device.DefaultHighInputLatency
	if config.Latency == LowLatency {
		latency = device.DefaultLowInputLatency
	}

	streamParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: config.Channels,
			Latency:  latency,
		},
		SampleRate:      float64(config.SampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(streamParams, d.callback)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}

	d.stream = stream
	d.config = config
	d.initialized = true

	return nil
}

// callback is called by PortAudio when audio data is available
func (d *PortAudioDriver) callback(in []int16) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.recording {
		d.buffer = append(d.buffer, in...)
	}
}

// Start starts capturing audio
func (d *PortAudioDriver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return fmt.Errorf("driver not opened")
	}

	if d.recording {
		return fmt.Errorf("already recording")
	}

	d.buffer = d.buffer[:0]

	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}

	d.recording = true
	return nil
}

// Stop stops capturing and returns the captured samples
func (d *PortAudioDriver) Stop() ([]int16, error) {
	d.mu.Lock()
	if !d.recording {
		d.mu.Unlock()
		return nil, fmt.Errorf("not recording")
	}
	d.recording = false
	stream := d.stream
	d.mu.Unlock()

	// Stop waits for the callback to return, so it must run without d.mu held
	if err := stream.Stop(); err != nil {
		return nil, fmt.Errorf("failed to stop stream: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	data := make([]int16, len(d.buffer))
	copy(data, d.buffer)
	return data, nil
}

// IsRecording returns whether capture is currently active
func (d *PortAudioDriver) IsRecording() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recording
}

// Close releases all resources
func (d *PortAudioDriver) Close() error {
	d.mu.Lock()
	if d.terminated {
		d.mu.Unlock()
		return nil
	}
	d.terminated = true
	wasRecording := d.recording
	d.recording = false
	stream := d.stream
	d.stream = nil
	d.initialized = false
	d.mu.Unlock()

	var firstErr error
	if stream != nil {
		if wasRecording {
			if err := stream.Stop(); err != nil {
				firstErr = fmt.Errorf("failed to stop stream: %w", err)
			}
		}
		if err := stream.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close stream: %w", err)
		}
	}

	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to terminate PortAudio: %w", err)
	}

	return firstErr
}

// PortAudioPlayer implements PlaybackDriver using PortAudio
type PortAudioPlayer struct {
	mu         sync.Mutex
	stream     *portaudio.Stream
	clip       Clip
	frame      int
	playing    bool
	terminated bool
}

// NewPortAudioPlayer creates a new PortAudio playback driver
func NewPortAudioPlayer() (*PortAudioPlayer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &PortAudioPlayer{}, nil
}

// Open decodes the WAV file at path and opens an output stream for it
func (p *PortAudioPlayer) Open(path string, deviceID int) (time.Duration, error) {
	clip, err := ReadWAV(path)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.terminated {
		return 0, fmt.Errorf("player closed")
	}
	if p.stream != nil {
		return 0, fmt.Errorf("stream already open")
	}

	device, err := resolveDevice(deviceID, portaudio.DefaultOutputDevice)
	if err != nil {
		return 0, err
	}
	if device.MaxOutputChannels < clip.Channels {
		return 0, fmt.Errorf("selected device '%s' (ID: %d) cannot play %d channels",
			device.Name, deviceID, clip.Channels)
	}

	streamParams := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: clip.Channels,
			Latency:  device.DefaultHighOutputLatency,
		},
		SampleRate:      float64(clip.SampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(streamParams, p.callback)
	if err != nil {
		return 0, fmt.Errorf("failed to open output stream: %w", err)
	}

	p.stream = stream
	p.clip = clip
	p.frame = 0

	return clip.Duration(), nil
}

// callback fills the output buffer from the current position, padding with silence
func (p *PortAudioPlayer) callback(out []int16) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	if p.playing {
		start := p.frame * p.clip.Channels
		if start < len(p.clip.Samples) {
			n = copy(out, p.clip.Samples[start:])
		}
		p.frame += n / p.clip.Channels
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
}

// Play starts or resumes output
func (p *PortAudioPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return fmt.Errorf("player not opened")
	}
	if p.playing {
		return nil
	}

	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	p.playing = true
	return nil
}

// Pause suspends output
func (p *PortAudioPlayer) Pause() error {
	p.mu.Lock()
	if p.stream == nil || !p.playing {
		p.mu.Unlock()
		return nil
	}
	p.playing = false
	stream := p.stream
	p.mu.Unlock()

	if err := stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop output stream: %w", err)
	}
	return nil
}

// Seek moves the playback position
func (p *PortAudioPlayer) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return fmt.Errorf("player not opened")
	}

	frame := int(pos * time.Duration(p.clip.SampleRate) / time.Second)
	if frame < 0 {
		frame = 0
	}
	if frame > p.clip.Frames() {
		frame = p.clip.Frames()
	}
	p.frame = frame
	return nil
}

// Position returns the current playback position
func (p *PortAudioPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.clip.SampleRate == 0 {
		return 0
	}
	return time.Duration(p.frame) * time.Second / time.Duration(p.clip.SampleRate)
}

// Close releases all resources
func (p *PortAudioPlayer) Close() error {
	p.mu.Lock()
	if p.terminated {
		p.mu.Unlock()
		return nil
	}
	p.terminated = true
	wasPlaying := p.playing
	p.playing = false
	stream := p.stream
	p.stream = nil
	p.mu.Unlock()

	var firstErr error
	if stream != nil {
		if wasPlaying {
			if err := stream.Stop(); err != nil {
				firstErr = fmt.Errorf("failed to stop output stream: %w", err)
			}
		}
		if err := stream.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close output stream: %w", err)
		}
	}

	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to terminate PortAudio: %w", err)
	}

	return firstErr
}
