// Package api exposes the composer and the application settings over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/yok-tottii/voicenote/internal/audio"
	"github.com/yok-tottii/voicenote/internal/composer"
	"github.com/yok-tottii/voicenote/internal/config"
	"github.com/yok-tottii/voicenote/internal/failure"
	"github.com/yok-tottii/voicenote/internal/hotkey"
	"github.com/yok-tottii/voicenote/internal/logger"
	"github.com/yok-tottii/voicenote/internal/outbox"
	"github.com/yok-tottii/voicenote/internal/permissions"
	"github.com/yok-tottii/voicenote/internal/recording"
)

// dispatchTimeout bounds how long a request waits for the composer.
// A permission prompt may be on screen, so it is generous.
const dispatchTimeout = 2 * time.Minute

// Composer is the controller surface the API drives
type Composer interface {
	Dispatch(ctx context.Context, intent composer.Intent) error
	Mode() composer.Mode
	Draft() composer.Draft
	Controls() composer.Controls
}

// Outbox lists sent messages
type Outbox interface {
	List() ([]outbox.Entry, error)
}

// PermissionChecker reports microphone access without prompting
type PermissionChecker interface {
	CheckMicrophonePermission() permissions.PermissionStatus
}

// DeviceLister enumerates audio devices
type DeviceLister func() (inputs, outputs []audio.Device, err error)

// Options wires the handler to the running application
type Options struct {
	Config      *config.Config
	ConfigPath  string
	Composer    Composer
	Outbox      Outbox
	Permissions PermissionChecker
	Devices     DeviceLister
	Logger      *logger.Logger

	// OnSettingsChanged is called after settings were saved
	OnSettingsChanged func(*config.Config) error
}

// Handler manages API endpoints
type Handler struct {
	opts Options
	log  *logger.Logger
}

// New creates a new API handler
func New(opts Options) *Handler {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	return &Handler{opts: opts, log: opts.Logger}
}

// RegisterRoutes registers all API routes on the given router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/composer", h.getComposer).Methods(http.MethodGet)
	api.HandleFunc("/composer/intents", h.postIntent).Methods(http.MethodPost)
	api.HandleFunc("/composer/draft", h.putDraft).Methods(http.MethodPut)
	api.HandleFunc("/outbox", h.getOutbox).Methods(http.MethodGet)
	api.HandleFunc("/settings", h.getSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", h.putSettings).Methods(http.MethodPut)
	api.HandleFunc("/hotkey/validate", h.validateHotkey).Methods(http.MethodPost)
	api.HandleFunc("/devices", h.getDevices).Methods(http.MethodGet)
	api.HandleFunc("/permissions", h.getPermissions).Methods(http.MethodGet)
}

// ComposerView is the JSON form of the composer state
type ComposerView struct {
	Mode           string              `json:"mode"`
	ElapsedSeconds int                 `json:"elapsed_seconds,omitempty"`
	Artifact       *recording.Artifact `json:"artifact,omitempty"`
	Playback       string              `json:"playback,omitempty"`
	PositionMillis int64               `json:"position_ms,omitempty"`
	Draft          DraftView           `json:"draft"`
	Controls       composer.Controls   `json:"controls"`
}

// DraftView is the JSON form of the host's draft
type DraftView struct {
	Text        string `json:"text"`
	Attachments int    `json:"attachments"`
}

// ViewOf snapshots a composer
func ViewOf(c Composer) ComposerView {
	mode := c.Mode()
	draft := c.Draft()
	view := ComposerView{
		Mode:     mode.Kind.String(),
		Draft:    DraftView{Text: draft.Text, Attachments: draft.Attachments},
		Controls: c.Controls(),
	}
	switch mode.Kind {
	case composer.Recording:
		view.ElapsedSeconds = mode.ElapsedSeconds()
	case composer.Preview:
		view.Artifact = mode.Artifact
		view.Playback = mode.Playback.String()
		view.PositionMillis = mode.Position.Milliseconds()
	}
	return view
}

func (h *Handler) composerReady(w http.ResponseWriter) bool {
	if h.opts.Composer == nil {
		writeError(w, http.StatusServiceUnavailable, "composer is not running")
		return false
	}
	return true
}

// getComposer handles GET /api/composer
func (h *Handler) getComposer(w http.ResponseWriter, r *http.Request) {
	if !h.composerReady(w) {
		return
	}
	writeJSON(w, http.StatusOK, ViewOf(h.opts.Composer))
}

// postIntent handles POST /api/composer/intents
func (h *Handler) postIntent(w http.ResponseWriter, r *http.Request) {
	if !h.composerReady(w) {
		return
	}

	var request struct {
		Intent string `json:"intent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, err := composer.ParseIntentKind(request.Intent)
	if err != nil || kind == composer.IntentSetDraft {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown intent %q", request.Intent))
		return
	}

	h.dispatch(w, r, composer.Intent{Kind: kind})
}

// putDraft handles PUT /api/composer/draft
func (h *Handler) putDraft(w http.ResponseWriter, r *http.Request) {
	if !h.composerReady(w) {
		return
	}

	var draft DraftView
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if draft.Attachments < 0 {
		writeError(w, http.StatusBadRequest, "attachments must not be negative")
		return
	}

	h.dispatch(w, r, composer.SetDraft(composer.Draft{Text: draft.Text, Attachments: draft.Attachments}))
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, intent composer.Intent) {
	ctx, cancel := context.WithTimeout(r.Context(), dispatchTimeout)
	defer cancel()

	if err := h.opts.Composer.Dispatch(ctx, intent); err != nil {
		status := statusFor(err)
		h.log.Debug("intent %s: %v", intent.Kind, err)
		writeJSON(w, status, map[string]interface{}{
			"error":    err.Error(),
			"composer": ViewOf(h.opts.Composer),
		})
		return
	}

	writeJSON(w, http.StatusOK, ViewOf(h.opts.Composer))
}

func statusFor(err error) int {
	var fe *failure.Error
	switch {
	case errors.Is(err, composer.ErrIllegalIntent):
		return http.StatusConflict
	case errors.Is(err, composer.ErrNotMounted), errors.Is(err, composer.ErrUnmounted):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	case errors.As(err, &fe):
		switch fe.Kind {
		case failure.PermissionDenied:
			return http.StatusForbidden
		case failure.PlaybackFailed:
			return http.StatusUnprocessableEntity
		}
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// getOutbox handles GET /api/outbox
func (h *Handler) getOutbox(w http.ResponseWriter, r *http.Request) {
	entries := []outbox.Entry{}
	if h.opts.Outbox != nil {
		list, err := h.opts.Outbox.List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read outbox: %v", err))
			return
		}
		if list != nil {
			entries = list
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// getSettings returns the current configuration
func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.opts.Config.Clone())
}

// putSettings updates and saves the configuration
func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.opts.Config.Update(updates); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to update config: %v", err))
		return
	}

	if h.opts.ConfigPath != "" {
		if err := h.opts.Config.Save(h.opts.ConfigPath); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save config: %v", err))
			return
		}
	}

	if h.opts.OnSettingsChanged != nil {
		if err := h.opts.OnSettingsChanged(h.opts.Config); err != nil {
			// Saved, but the running app could not apply it
			h.log.Warn("settings saved but not applied: %v", err)
			writeJSON(w, http.StatusOK, map[string]string{
				"status":  "partial",
				"message": fmt.Sprintf("settings saved but reload failed: %v", err),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// validateHotkey handles POST /api/hotkey/validate
func (h *Handler) validateHotkey(w http.ResponseWriter, r *http.Request) {
	var request config.HotkeyConfig
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hk, err := hotkey.ConfigFrom(request, config.RecordingModePressToHold)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"valid":   false,
			"message": err.Error(),
		})
		return
	}

	conflicts := []string{}
	for _, c := range hotkey.CheckConflicts(hk.Modifiers, hk.Key) {
		conflicts = append(conflicts, c.Name)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":     true,
		"hotkey":    hotkey.FormatHotkey(hk.Modifiers, hk.Key),
		"conflicts": conflicts,
	})
}

// Device represents an audio device
type Device struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// convertAudioDevices converts audio.Device slice to api.Device slice
func convertAudioDevices(audioDevices []audio.Device) []Device {
	devices := make([]Device, 0, len(audioDevices))
	for _, dev := range audioDevices {
		devices = append(devices, Device{
			ID:        dev.ID,
			Name:      dev.Name,
			IsDefault: dev.IsDefault,
		})
	}
	return devices
}

var systemDefault = []Device{{ID: audio.DefaultDevice, Name: "System Default", IsDefault: true}}

// getDevices handles GET /api/devices
func (h *Handler) getDevices(w http.ResponseWriter, r *http.Request) {
	inputs, outputs := systemDefault, systemDefault

	if h.opts.Devices != nil {
		in, out, err := h.opts.Devices()
		if err != nil {
			// Devices can still be picked by ID, so fall back to the default
			h.log.Warn("failed to list audio devices: %v", err)
		} else {
			inputs, outputs = convertAudioDevices(in), convertAudioDevices(out)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"input":  inputs,
		"output": outputs,
	})
}

// Permission represents a system permission status
type Permission struct {
	Status  string `json:"status"`
	Granted bool   `json:"granted"`
	Message string `json:"message"`
}

// getPermissions handles GET /api/permissions
func (h *Handler) getPermissions(w http.ResponseWriter, r *http.Request) {
	status := permissions.PermissionAuthorized
	if h.opts.Permissions != nil {
		status = h.opts.Permissions.CheckMicrophonePermission()
	}

	writeJSON(w, http.StatusOK, map[string]Permission{
		"microphone": {
			Status:  status.String(),
			Granted: permissions.DecisionFor(status) == permissions.Granted,
			Message: permissions.GetPermissionStatusMessage(status),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
