//go:build darwin

package permissions

/*
#cgo CFLAGS: -x objective-c -fmodules
#cgo LDFLAGS: -framework AVFoundation

#import <AVFoundation/AVFoundation.h>

int check_microphone_permission() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}

int request_microphone_permission() {
    __block BOOL granted = NO;
    dispatch_semaphore_t sem = dispatch_semaphore_create(0);
    [AVCaptureDevice requestAccessForMediaType:AVMediaTypeAudio completionHandler:^(BOOL ok) {
        granted = ok;
        dispatch_semaphore_signal(sem);
    }];
    dispatch_semaphore_wait(sem, DISPATCH_TIME_FOREVER);
    return granted ? 1 : 0;
}
*/
import "C"

import (
	"context"
	"os/exec"
)

// PermissionChecker provides methods for checking macOS system permissions
type PermissionChecker struct{}

// NewPermissionChecker creates a new permission checker
func NewPermissionChecker() *PermissionChecker {
	return &PermissionChecker{}
}

// CheckMicrophonePermission checks if the application has microphone access permission
func (pc *PermissionChecker) CheckMicrophonePermission() PermissionStatus {
	status := C.check_microphone_permission()
	return PermissionStatus(status)
}

// RequestMicrophonePermission shows the system microphone prompt.
// The prompt itself cannot be withdrawn; cancelling ctx only stops waiting.
func (pc *PermissionChecker) RequestMicrophonePermission(ctx context.Context) (PermissionStatus, error) {
	result := make(chan PermissionStatus, 1)
	go func() {
		if C.request_microphone_permission() == 1 {
			result <- PermissionAuthorized
			return
		}
		result <- PermissionDenied
	}()

	select {
	case status := <-result:
		return status, nil
	case <-ctx.Done():
		return PermissionNotDetermined, ctx.Err()
	}
}

// OpenMicrophoneSettings opens system settings for microphone permission
func (pc *PermissionChecker) OpenMicrophoneSettings() error {
	url := "x-apple.systempreferences:com.apple.preference.security?Privacy_Microphone"
	cmd := exec.Command("open", url)
	return cmd.Run()
}
