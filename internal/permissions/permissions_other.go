//go:build !darwin

package permissions

import (
	"context"
	"fmt"
)

// PermissionChecker reports microphone access on hosts without a capture
// permission model. Access control there is the device node's file mode.
type PermissionChecker struct{}

// NewPermissionChecker creates a new permission checker
func NewPermissionChecker() *PermissionChecker {
	return &PermissionChecker{}
}

// CheckMicrophonePermission always reports authorized
func (pc *PermissionChecker) CheckMicrophonePermission() PermissionStatus {
	return PermissionAuthorized
}

// RequestMicrophonePermission always reports authorized
func (pc *PermissionChecker) RequestMicrophonePermission(ctx context.Context) (PermissionStatus, error) {
	return PermissionAuthorized, nil
}

// OpenMicrophoneSettings is not supported on this platform
func (pc *PermissionChecker) OpenMicrophoneSettings() error {
	return fmt.Errorf("no microphone settings page on this platform")
}
