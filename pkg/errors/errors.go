// Package errors provides the coded errors of pluginrelease.
//
// Every failure a release can report carries a [Code]. The CLI prints the
// message; the preview server and tests match on the code.
//
// # Error Codes
//
//   - INVALID_*: a module, manifest, version or config value is rejected
//   - MISSING_* / MALFORMED_* / AMBIGUOUS_* / NO_*: the release batch is
//     aborted and nothing is written (see [IsFatal])
//   - *_NOT_FOUND: a plugin, file or remote resource does not exist
//   - NETWORK_ERROR: downloading a registry or an artifact failed
//   - INTERNAL_ERROR / UNSUPPORTED: wiring mistakes and unknown formats
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingMetadata, "manifest of %s has no %s entry", name, key)
//	if errors.Is(err, errors.ErrCodeMissingMetadata) {
//	    // Abort the release
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedRegistry, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidCategory Code = "INVALID_CATEGORY"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPOM      Code = "INVALID_POM"

	// Release errors. Each of these aborts the whole batch.
	ErrCodeMalformedRegistry       Code = "MALFORMED_REGISTRY"
	ErrCodeMissingMetadata         Code = "MISSING_METADATA"
	ErrCodeNoDistributableModules  Code = "NO_DISTRIBUTABLE_MODULES"
	ErrCodeAmbiguousSuite          Code = "AMBIGUOUS_SUITE"
	ErrCodeInconsistentReleaseLine Code = "INCONSISTENT_RELEASE_LINE"

	// Resource not found errors
	ErrCodePluginNotFound Code = "PLUGIN_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It walks the whole error chain, so an outer error with a different code
// does not hide an inner match.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err aborted the release batch before anything was
// published.
func IsFatal(err error) bool {
	for _, code := range []Code{
		ErrCodeMalformedRegistry,
		ErrCodeMissingMetadata,
		ErrCodeNoDistributableModules,
		ErrCodeAmbiguousSuite,
	} {
		if Is(err, code) {
			return true
		}
	}
	return false
}
