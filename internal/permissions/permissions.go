package permissions

import (
	"context"
	"fmt"

	"github.com/yok-tottii/voicenote/internal/failure"
	"github.com/yok-tottii/voicenote/internal/logger"
)

// PermissionStatus represents the status of a system permission
type PermissionStatus int

const (
	// PermissionNotDetermined means the user hasn't been asked yet
	PermissionNotDetermined PermissionStatus = 0
	// PermissionRestricted means the permission is restricted by parental controls
	PermissionRestricted PermissionStatus = 1
	// PermissionDenied means the user has explicitly denied the permission
	PermissionDenied PermissionStatus = 2
	// PermissionAuthorized means the user has authorized the permission
	PermissionAuthorized PermissionStatus = 3
)

// PermissionStatus string representation
func (ps PermissionStatus) String() string {
	switch ps {
	case PermissionNotDetermined:
		return "NotDetermined"
	case PermissionRestricted:
		return "Restricted"
	case PermissionDenied:
		return "Denied"
	case PermissionAuthorized:
		return "Authorized"
	default:
		return "Unknown"
	}
}

// Decision is the capture authorization as seen by the composer
type Decision int

const (
	// Unknown means the user has not answered a prompt yet
	Unknown Decision = iota
	// Granted means capture may proceed
	Granted
	// Denied means capture is refused until the user changes system settings
	Denied
)

// String returns the string representation of the decision
func (d Decision) String() string {
	switch d {
	case Granted:
		return "Granted"
	case Denied:
		return "Denied"
	default:
		return "Unknown"
	}
}

// DecisionFor maps a platform status onto a decision
func DecisionFor(status PermissionStatus) Decision {
	switch status {
	case PermissionAuthorized:
		return Granted
	case PermissionNotDetermined:
		return Unknown
	default:
		return Denied
	}
}

// Platform is the host's microphone authorization API
type Platform interface {
	// CheckMicrophonePermission returns the current status without prompting
	CheckMicrophonePermission() PermissionStatus
	// RequestMicrophonePermission shows the system prompt and blocks until
	// the user answers or ctx is done
	RequestMicrophonePermission(ctx context.Context) (PermissionStatus, error)
}

// Gate obtains capture authorization, prompting at most once per call
type Gate struct {
	platform Platform
	log      *logger.Logger
}

// NewGate creates a gate over the given platform
func NewGate(platform Platform, log *logger.Logger) *Gate {
	return &Gate{platform: platform, log: log}
}

// EnsureCaptureAuthorized returns Granted or Denied. An already granted
// permission returns without suspending; an undetermined one prompts once.
// Denied is final for this call and is never retried here.
func (g *Gate) EnsureCaptureAuthorized(ctx context.Context) (Decision, error) {
	status := g.platform.CheckMicrophonePermission()
	switch DecisionFor(status) {
	case Granted:
		return Granted, nil
	case Denied:
		g.log.Warn("microphone permission is %s", status)
		return Denied, nil
	}

	g.log.Info("requesting microphone permission")
	status, err := g.platform.RequestMicrophonePermission(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Unknown, fmt.Errorf("microphone permission prompt abandoned: %w", ctx.Err())
		}
		return Unknown, failure.Translate("authorize", fmt.Errorf("failed to request microphone permission: %w", err))
	}

	decision := DecisionFor(status)
	if decision != Granted {
		// An unanswered prompt counts as a refusal for this attempt
		g.log.Warn("microphone permission request answered with %s", status)
		return Denied, nil
	}

	g.log.Info("microphone permission granted")
	return Granted, nil
}

// GetPermissionStatusMessage returns a human-readable message for a permission status
func GetPermissionStatusMessage(status PermissionStatus) string {
	switch status {
	case PermissionNotDetermined:
		return "Permission not yet determined"
	case PermissionRestricted:
		return "Permission restricted by parental controls"
	case PermissionDenied:
		return "Permission denied"
	case PermissionAuthorized:
		return "Permission authorized"
	default:
		return "Unknown permission status"
	}
}
