package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/yok-tottii/voicenote/internal/logger"
)

const (
	// RecordingModePressToHold records while the hotkey is held down
	RecordingModePressToHold = "press-to-hold"
	// RecordingModeToggle starts on the first press and stops on the second
	RecordingModeToggle = "toggle"
)

// Config holds application configuration
type Config struct {
	Hotkey         HotkeyConfig `json:"hotkey" toml:"hotkey"`
	RecordingMode  string       `json:"recording_mode" toml:"recording_mode"` // "press-to-hold" or "toggle"
	InputDeviceID  int          `json:"input_device_id" toml:"input_device_id"`
	OutputDeviceID int          `json:"output_device_id" toml:"output_device_id"`
	UILanguage     string       `json:"ui_language" toml:"ui_language"`         // "ja" or "en"
	MaxRecordTime  int          `json:"max_record_time" toml:"max_record_time"` // seconds
	PrepareTimeout int          `json:"prepare_timeout" toml:"prepare_timeout"` // seconds
	TickInterval   int          `json:"tick_interval" toml:"tick_interval"`     // milliseconds
	EndTolerance   int          `json:"end_tolerance" toml:"end_tolerance"`     // milliseconds
	TempDir        string       `json:"temp_dir" toml:"temp_dir"`
	OutboxDir      string       `json:"outbox_dir" toml:"outbox_dir"`
	ServerPort     int          `json:"server_port" toml:"server_port"`
	LogLevel       string       `json:"log_level" toml:"log_level"`
	mu             sync.RWMutex
}

// HotkeyConfig holds hotkey configuration
type HotkeyConfig struct {
	Ctrl  bool   `json:"ctrl" toml:"ctrl"`
	Shift bool   `json:"shift" toml:"shift"`
	Alt   bool   `json:"alt" toml:"alt"`
	Cmd   bool   `json:"cmd" toml:"cmd"`
	Key   string `json:"key" toml:"key"` // e.g., "Space"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Ctrl: true,
			Alt:  true,
			Key:  "Space",
		},
		RecordingMode:  RecordingModePressToHold,
		InputDeviceID:  -1, // -1 means use system default device
		OutputDeviceID: -1,
		UILanguage:     "en",
		MaxRecordTime:  300,
		PrepareTimeout: 10,
		TickInterval:   150,
		EndTolerance:   100,
		TempDir:        "", // Empty means the OS temp directory
		OutboxDir:      defaultOutboxDir(),
		ServerPort:     18765,
		LogLevel:       "info",
	}
}

func defaultOutboxDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "voicenote", "outbox")
	}
	return filepath.Join(".", "outbox")
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load loads configuration from the specified path. The format follows the
// file extension: .toml is TOML, anything else is JSON. Fields missing from
// the file keep their defaults, and VOICENOTE_* environment variables
// override both.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if isTOML(path) {
			if _, err := toml.DecodeFile(path, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if config.Hotkey.Key == "" {
		config.Hotkey.Key = "Space"
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnvOverrides(c *Config) error {
	if v := os.Getenv("VOICENOTE_UI_LANGUAGE"); v != "" {
		c.UILanguage = v
	}
	if v := os.Getenv("VOICENOTE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("VOICENOTE_TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv("VOICENOTE_OUTBOX_DIR"); v != "" {
		c.OutboxDir = v
	}

	ints := []struct {
		name   string
		target *int
	}{
		{"VOICENOTE_INPUT_DEVICE", &c.InputDeviceID},
		{"VOICENOTE_OUTPUT_DEVICE", &c.OutputDeviceID},
		{"VOICENOTE_MAX_RECORD_TIME", &c.MaxRecordTime},
		{"VOICENOTE_SERVER_PORT", &c.ServerPort},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", e.name, v)
		}
		*e.target = n
	}

	return nil
}

// Save saves configuration to the specified path
func (c *Config) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, "voicenote", "config.toml")
}

// Update updates configuration fields
func (c *Config) Update(updates map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, value := range updates {
		switch key {
		case "recording_mode":
			if v, ok := value.(string); ok {
				if v != RecordingModePressToHold && v != RecordingModeToggle {
					return fmt.Errorf("invalid recording_mode: %s", v)
				}
				c.RecordingMode = v
			}
		case "input_device_id":
			if v, ok := value.(float64); ok {
				c.InputDeviceID = int(v)
			}
		case "output_device_id":
			if v, ok := value.(float64); ok {
				c.OutputDeviceID = int(v)
			}
		case "ui_language":
			if v, ok := value.(string); ok {
				if v != "ja" && v != "en" {
					return fmt.Errorf("invalid ui_language: %s", v)
				}
				c.UILanguage = v
			}
		case "max_record_time":
			if v, ok := value.(float64); ok {
				c.MaxRecordTime = int(v)
			}
		case "prepare_timeout":
			if v, ok := value.(float64); ok {
				c.PrepareTimeout = int(v)
			}
		case "tick_interval":
			if v, ok := value.(float64); ok {
				c.TickInterval = int(v)
			}
		case "end_tolerance":
			if v, ok := value.(float64); ok {
				c.EndTolerance = int(v)
			}
		case "temp_dir":
			if v, ok := value.(string); ok {
				c.TempDir = v
			}
		case "outbox_dir":
			if v, ok := value.(string); ok {
				c.OutboxDir = v
			}
		case "log_level":
			if v, ok := value.(string); ok {
				if _, err := logger.ParseLevel(v); err != nil {
					return fmt.Errorf("invalid log_level: %s", v)
				}
				c.LogLevel = v
			}
		case "hotkey":
			if v, ok := value.(map[string]interface{}); ok {
				if ctrl, ok := v["ctrl"].(bool); ok {
					c.Hotkey.Ctrl = ctrl
				}
				if shift, ok := v["shift"].(bool); ok {
					c.Hotkey.Shift = shift
				}
				if alt, ok := v["alt"].(bool); ok {
					c.Hotkey.Alt = alt
				}
				if cmd, ok := v["cmd"].(bool); ok {
					c.Hotkey.Cmd = cmd
				}
				if key, ok := v["key"].(string); ok {
					c.Hotkey.Key = key
				}
			}
		default:
			return fmt.Errorf("unknown setting: %s", key)
		}
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Config{
		Hotkey:         c.Hotkey,
		RecordingMode:  c.RecordingMode,
		InputDeviceID:  c.InputDeviceID,
		OutputDeviceID: c.OutputDeviceID,
		UILanguage:     c.UILanguage,
		MaxRecordTime:  c.MaxRecordTime,
		PrepareTimeout: c.PrepareTimeout,
		TickInterval:   c.TickInterval,
		EndTolerance:   c.EndTolerance,
		TempDir:        c.TempDir,
		OutboxDir:      c.OutboxDir,
		ServerPort:     c.ServerPort,
		LogLevel:       c.LogLevel,
	}
}

// ExpandPath expands ~ to home directory in file paths
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// Durations returns the timing fields as durations
func (c *Config) Durations() (maxRecord, prepareTimeout, tick, endTolerance time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return time.Duration(c.MaxRecordTime) * time.Second,
		time.Duration(c.PrepareTimeout) * time.Second,
		time.Duration(c.TickInterval) * time.Millisecond,
		time.Duration(c.EndTolerance) * time.Millisecond
}

// Validate validates all configuration fields
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.RecordingMode != RecordingModePressToHold && c.RecordingMode != RecordingModeToggle {
		return fmt.Errorf("invalid recording_mode: %s (must be 'press-to-hold' or 'toggle')", c.RecordingMode)
	}

	if c.UILanguage != "ja" && c.UILanguage != "en" {
		return fmt.Errorf("invalid ui_language: %s (must be 'ja' or 'en')", c.UILanguage)
	}

	if c.MaxRecordTime <= 0 || c.MaxRecordTime > 600 {
		return fmt.Errorf("invalid max_record_time: %d (must be between 1 and 600 seconds)", c.MaxRecordTime)
	}

	if c.PrepareTimeout <= 0 || c.PrepareTimeout > 60 {
		return fmt.Errorf("invalid prepare_timeout: %d (must be between 1 and 60 seconds)", c.PrepareTimeout)
	}

	if c.TickInterval < 50 || c.TickInterval > 1000 {
		return fmt.Errorf("invalid tick_interval: %d (must be between 50 and 1000 milliseconds)", c.TickInterval)
	}

	// Playback position reports are not exact; more than 100ms would cut audible audio
	if c.EndTolerance < 0 || c.EndTolerance > 100 {
		return fmt.Errorf("invalid end_tolerance: %d (must be between 0 and 100 milliseconds)", c.EndTolerance)
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server_port: %d", c.ServerPort)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	if c.Hotkey.Key == "" {
		return fmt.Errorf("hotkey key cannot be empty")
	}

	return nil
}
