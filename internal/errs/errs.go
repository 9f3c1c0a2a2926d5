// Package errs defines the error classes shared by every idshift component.
// Callers classify failures with errors.Is against the exported sentinels;
// the concrete message is carried by wrapping.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing file, directory, or unsupported platform.
	ErrNotFound = errors.New("not found")

	// ErrPermission reports denied read/write access, including registry
	// and plist writes that need elevation.
	ErrPermission = errors.New("permission denied")

	// ErrInvalidFormat reports a malformed version string or corrupt
	// JSON/database content.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrPartialWrite reports a failure inside the atomic-replace window.
	// The temp-file-plus-rename pattern makes this effectively unreachable,
	// but the class exists so a rename failure is never misreported.
	ErrPartialWrite = errors.New("partial write")
)

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Permission wraps ErrPermission with a formatted message.
func Permission(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermission, fmt.Sprintf(format, args...))
}

// InvalidFormat wraps ErrInvalidFormat with a formatted message.
func InvalidFormat(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, fmt.Sprintf(format, args...))
}
