package notification

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yok-tottii/voicenote/internal/failure"
	"github.com/yok-tottii/voicenote/internal/i18n"
	"github.com/yok-tottii/voicenote/internal/recording"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	// TypeInfo is an informational notification
	TypeInfo NotificationType = "info"
	// TypeWarning is a warning notification
	TypeWarning NotificationType = "warning"
	// TypeError is an error notification
	TypeError NotificationType = "error"
	// TypeSuccess is a success notification
	TypeSuccess NotificationType = "success"
)

// Notification is a single user-facing message
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
}

// Notifier delivers notifications to the user
type Notifier interface {
	Send(notification *Notification) error
}

// NotificationManager sends notifications via macOS notification center
type NotificationManager struct {
	appName string
	run     func(name string, args ...string) error
}

// NewNotificationManager creates a new notification manager
func NewNotificationManager(appName string) *NotificationManager {
	return &NotificationManager{
		appName: appName,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification to the user via macOS notification center
func (nm *NotificationManager) Send(notification *Notification) error {
	if notification == nil {
		return fmt.Errorf("notification cannot be nil")
	}

	title := notification.Title
	if title == "" {
		title = nm.appName
	}

	if err := nm.run("osascript", "-e", displayScript(title, notification.Message)); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}

func displayScript(title, message string) string {
	return fmt.Sprintf(`display notification "%s" with title "%s"`,
		EscapeAppleScript(message),
		EscapeAppleScript(title))
}

// EscapeAppleScript escapes special characters for an AppleScript string literal
func EscapeAppleScript(s string) string {
	// Escape backslashes first to avoid double-escaping
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return s
}

// WriterNotifier prints notifications as lines, for terminals and logs
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier that writes to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Send writes the notification as a single line
func (wn *WriterNotifier) Send(notification *Notification) error {
	if notification == nil {
		return fmt.Errorf("notification cannot be nil")
	}

	wn.mu.Lock()
	defer wn.mu.Unlock()

	_, err := fmt.Fprintf(wn.w, "[%s] %s\n", strings.ToUpper(string(notification.Type)), notification.Message)
	return err
}

// NewPlatformNotifier returns the notification center on macOS and w elsewhere
func NewPlatformNotifier(appName string, w io.Writer) Notifier {
	if runtime.GOOS == "darwin" {
		return NewNotificationManager(appName)
	}
	return NewWriterNotifier(w)
}

// Reporter turns composer events into translated notifications
type Reporter struct {
	appName    string
	notifier   Notifier
	translator *i18n.Translator
}

// NewReporter creates a reporter. A nil translator falls back to i18n.T.
func NewReporter(appName string, notifier Notifier, translator *i18n.Translator) *Reporter {
	return &Reporter{appName: appName, notifier: notifier, translator: translator}
}

func (r *Reporter) t(key string, params map[string]string) string {
	if r.translator == nil {
		return i18n.TF(key, params)
	}
	return r.translator.TranslateWithFormat(key, params)
}

func (r *Reporter) send(kind NotificationType, message string) error {
	return r.notifier.Send(&Notification{Title: r.appName, Message: message, Type: kind})
}

// Failure reports a composer failure with the message for its kind
func (r *Reporter) Failure(err error) error {
	if err == nil {
		return nil
	}
	kind := failure.KindOf(err)
	if kind == failure.PermissionDenied {
		return r.send(TypeWarning, r.t(kind.MessageKey(), nil))
	}
	return r.send(TypeError, r.t(kind.MessageKey(), nil))
}

// MaxDuration reports that a take was stopped at the recording limit
func (r *Reporter) MaxDuration(limit time.Duration) error {
	seconds := strconv.Itoa(int(limit / time.Second))
	return r.send(TypeWarning, r.t("notification.max_duration", map[string]string{"seconds": seconds}))
}

// VoiceNoteSent reports a delivered voice note
func (r *Reporter) VoiceNoteSent(artifact recording.Artifact) error {
	seconds := strconv.Itoa(artifact.DurationSeconds)
	return r.send(TypeSuccess, r.t("composer.sent_audio", map[string]string{"seconds": seconds}))
}

// LocationCopied reports that the sent file's path is on the clipboard
func (r *Reporter) LocationCopied() error {
	return r.send(TypeInfo, r.t("notification.location_copied", nil))
}

// ErrNoNotifier is returned by Multi when constructed without notifiers
var ErrNoNotifier = errors.New("no notifier configured")

// Multi fans a notification out to several notifiers
type Multi []Notifier

// Send delivers to every notifier and joins their errors
func (m Multi) Send(notification *Notification) error {
	if len(m) == 0 {
		return ErrNoNotifier
	}
	var errs []error
	for _, n := range m {
		if err := n.Send(notification); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
