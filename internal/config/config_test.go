package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("Expected default config to be created")
	}

	if config.Hotkey.Ctrl != true {
		t.Error("Expected Ctrl to be true")
	}

	if config.Hotkey.Key != "Space" {
		t.Errorf("Expected Key to be 'Space', got '%s'", config.Hotkey.Key)
	}

	if config.RecordingMode != RecordingModePressToHold {
		t.Errorf("Expected RecordingMode 'press-to-hold', got '%s'", config.RecordingMode)
	}

	if config.InputDeviceID != -1 || config.OutputDeviceID != -1 {
		t.Errorf("Expected default devices, got %d/%d", config.InputDeviceID, config.OutputDeviceID)
	}

	if config.TickInterval != 150 {
		t.Errorf("Expected TickInterval 150, got %d", config.TickInterval)
	}

	if config.EndTolerance != 100 {
		t.Errorf("Expected EndTolerance 100, got %d", config.EndTolerance)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"json", "config.json"},
		{"toml", "config.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), tt.file)

			config := DefaultConfig()
			config.RecordingMode = RecordingModeToggle
			config.UILanguage = "ja"
			config.OutputDeviceID = 3
			config.Hotkey.Shift = true

			if err := config.Save(configPath); err != nil {
				t.Fatalf("Failed to save config: %v", err)
			}

			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				t.Fatal("Config file was not created")
			}

			loaded, err := Load(configPath)
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}

			if loaded.RecordingMode != RecordingModeToggle {
				t.Errorf("Expected RecordingMode 'toggle', got '%s'", loaded.RecordingMode)
			}
			if loaded.UILanguage != "ja" {
				t.Errorf("Expected UILanguage 'ja', got '%s'", loaded.UILanguage)
			}
			if loaded.OutputDeviceID != 3 {
				t.Errorf("Expected OutputDeviceID 3, got %d", loaded.OutputDeviceID)
			}
			if !loaded.Hotkey.Shift {
				t.Error("Expected Shift to survive the round trip")
			}
		})
	}
}

func TestLoadPartialTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := "ui_language = \"ja\"\nmax_record_time = 120\n\n[hotkey]\nkey = \"R\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.MaxRecordTime != 120 {
		t.Errorf("Expected MaxRecordTime 120, got %d", config.MaxRecordTime)
	}
	if config.Hotkey.Key != "R" {
		t.Errorf("Expected Key 'R', got '%s'", config.Hotkey.Key)
	}
	// Missing fields keep their defaults
	if config.TickInterval != 150 {
		t.Errorf("Expected default TickInterval, got %d", config.TickInterval)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.json")
	os.WriteFile(jsonPath, []byte("{not json"), 0644)
	if _, err := Load(jsonPath); err == nil {
		t.Error("Expected error for malformed JSON")
	}

	tomlPath := filepath.Join(dir, "config.toml")
	os.WriteFile(tomlPath, []byte("max_record_time = ["), 0644)
	if _, err := Load(tomlPath); err == nil {
		t.Error("Expected error for malformed TOML")
	}
}

func TestLoadNonexistent(t *testing.T) {
	config, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error when loading nonexistent file, got: %v", err)
	}

	defaultConfig := DefaultConfig()
	if config.MaxRecordTime != defaultConfig.MaxRecordTime {
		t.Errorf("Expected MaxRecordTime %d, got %d", defaultConfig.MaxRecordTime, config.MaxRecordTime)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOICENOTE_UI_LANGUAGE", "ja")
	t.Setenv("VOICENOTE_SERVER_PORT", "9000")
	t.Setenv("VOICENOTE_OUTBOX_DIR", "/tmp/outbox")

	config, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.UILanguage != "ja" {
		t.Errorf("Expected UILanguage 'ja', got '%s'", config.UILanguage)
	}
	if config.ServerPort != 9000 {
		t.Errorf("Expected ServerPort 9000, got %d", config.ServerPort)
	}
	if config.OutboxDir != "/tmp/outbox" {
		t.Errorf("Expected OutboxDir '/tmp/outbox', got '%s'", config.OutboxDir)
	}
}

func TestEnvOverridesInvalid(t *testing.T) {
	t.Setenv("VOICENOTE_MAX_RECORD_TIME", "forever")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for non-numeric override")
	}
}

func TestUpdate(t *testing.T) {
	config := DefaultConfig()

	updates := map[string]interface{}{
		"recording_mode":   "toggle",
		"input_device_id":  float64(1),
		"output_device_id": float64(2),
		"max_record_time":  float64(90),
		"log_level":        "debug",
	}

	if err := config.Update(updates); err != nil {
		t.Fatalf("Failed to update config: %v", err)
	}

	if config.RecordingMode != RecordingModeToggle {
		t.Errorf("Expected RecordingMode 'toggle', got '%s'", config.RecordingMode)
	}
	if config.InputDeviceID != 1 {
		t.Errorf("Expected InputDeviceID 1, got %d", config.InputDeviceID)
	}
	if config.OutputDeviceID != 2 {
		t.Errorf("Expected OutputDeviceID 2, got %d", config.OutputDeviceID)
	}
	if config.MaxRecordTime != 90 {
		t.Errorf("Expected MaxRecordTime 90, got %d", config.MaxRecordTime)
	}
	if config.LogLevel != "debug" {
		t.Errorf("Expected LogLevel 'debug', got '%s'", config.LogLevel)
	}
}

func TestUpdateInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		updates map[string]interface{}
	}{
		{"recording_mode", map[string]interface{}{"recording_mode": "invalid"}},
		{"ui_language", map[string]interface{}{"ui_language": "invalid"}},
		{"log_level", map[string]interface{}{"log_level": "loud"}},
		{"unknown key", map[string]interface{}{"model_path": "/tmp/model.bin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := DefaultConfig().Update(tt.updates); err == nil {
				t.Errorf("Expected error for %v", tt.updates)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"max record time", func(c *Config) { c.MaxRecordTime = 0 }},
		{"prepare timeout", func(c *Config) { c.PrepareTimeout = 120 }},
		{"tick interval", func(c *Config) { c.TickInterval = 10 }},
		{"end tolerance", func(c *Config) { c.EndTolerance = 250 }},
		{"server port", func(c *Config) { c.ServerPort = 70000 }},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"hotkey", func(c *Config) { c.Hotkey.Key = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			if err := config.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestDurations(t *testing.T) {
	config := DefaultConfig()
	config.MaxRecordTime = 90

	maxRecord, prepare, tick, tolerance := config.Durations()
	if maxRecord != 90*time.Second {
		t.Errorf("Expected 90s, got %v", maxRecord)
	}
	if prepare != 10*time.Second {
		t.Errorf("Expected 10s, got %v", prepare)
	}
	if tick != 150*time.Millisecond {
		t.Errorf("Expected 150ms, got %v", tick)
	}
	if tolerance != 100*time.Millisecond {
		t.Errorf("Expected 100ms, got %v", tolerance)
	}
}

func TestClone(t *testing.T) {
	original := DefaultConfig()
	original.RecordingMode = RecordingModeToggle
	original.UILanguage = "ja"

	cloned := original.Clone()

	if cloned.RecordingMode != original.RecordingMode {
		t.Errorf("Expected RecordingMode '%s', got '%s'", original.RecordingMode, cloned.RecordingMode)
	}

	cloned.UILanguage = "en"

	if original.UILanguage != "ja" {
		t.Error("Modifying clone affected original")
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if !strings.Contains(path, "voicenote") {
		t.Errorf("Expected path to contain 'voicenote', got '%s'", path)
	}

	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end in 'config.toml', got '%s'", path)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("No home directory: %v", err)
	}

	expanded, err := ExpandPath("~/notes")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if expanded != filepath.Join(home, "notes") {
		t.Errorf("Expected %s, got %s", filepath.Join(home, "notes"), expanded)
	}

	if expanded, _ := ExpandPath(""); expanded != "" {
		t.Errorf("Expected empty path, got %s", expanded)
	}
}
