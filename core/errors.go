package core

import (
	"errors"
	"regexp"
)

// ErrNotFound is a sentinel error for "not found" cases
var ErrNotFound = errors.New("not found")

// ErrPermissionDenied is a sentinel error for permission failures. Permission
// failures are terminal for a request and must never enter the retry queue.
var ErrPermissionDenied = errors.New("permission denied")

// ErrSignatureInvalid is a sentinel error for webhook requests whose
// signature could not be verified as authentic
var ErrSignatureInvalid = errors.New("signature invalid")

// ErrNotConfigured is a sentinel error for operations that require
// configuration which is missing. Distinct from ErrSignatureInvalid so
// misconfiguration shows up as such in logs, but both deny the request.
var ErrNotConfigured = errors.New("not configured")

// IsNotFoundError checks if an error is a "not found" error
// This function handles both the ErrNotFound sentinel error and legacy string-based errors
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	// Check for the sentinel error
	if errors.Is(err, ErrNotFound) {
		return true
	}
	// Check for legacy string-based errors for backward compatibility
	return containsNotFound(err.Error())
}

// IsPermissionDeniedError checks if an error is a permission failure
func IsPermissionDeniedError(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// containsNotFound checks if an error message contains "not found"
func containsNotFound(errMsg string) bool {
	// Use case-insensitive matching for various "not found" formats
	return len(errMsg) > 0 && (regexp.MustCompile(`(?i)not found`).MatchString(errMsg))
}
