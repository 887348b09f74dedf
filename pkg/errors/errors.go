// Package errors provides structured error types for drawview.
//
// Every stage of the diagram pipeline reports failures through a single
// [Error] type carrying a machine-readable [Code]. The codes mirror the
// pipeline stages:
//   - DECODE_*: the stored payload could not be turned into XML text
//   - PARSE_*: the XML is not a usable diagram model
//   - EXPORT_*: the rendered scene could not be rasterized
//
// Ambient codes (INVALID_*, FILE_NOT_FOUND, INTERNAL_ERROR) cover input
// validation and configuration.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParseNotADiagram, "missing mxGraphModel element")
//	if errors.Is(err, errors.ErrCodeParseNotADiagram) {
//	    // Show troubleshooting guidance
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecodeMalformed, origErr, "base64 payload")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Decode errors
	ErrCodeDecodeMalformed Code = "DECODE_MALFORMED"

	// Parse errors
	ErrCodeParseInvalidXML   Code = "PARSE_INVALID_XML"
	ErrCodeParseNotADiagram  Code = "PARSE_NOT_A_DIAGRAM"
	ErrCodeParseCorruptModel Code = "PARSE_CORRUPT_MODEL"

	// Export errors
	ErrCodeExportEmptyContent   Code = "EXPORT_EMPTY_CONTENT"
	ErrCodeExportDegenerateSize Code = "EXPORT_DEGENERATE_SIZE"
	ErrCodeExportEncodeFailed   Code = "EXPORT_ENCODE_FAILED"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsLoadError reports whether err aborts a document load, that is, whether it
// came from the decode or parse stage.
func IsLoadError(err error) bool {
	switch GetCode(err) {
	case ErrCodeDecodeMalformed, ErrCodeParseInvalidXML, ErrCodeParseNotADiagram, ErrCodeParseCorruptModel:
		return true
	}
	return false
}

// IsExportError reports whether err was raised while rasterizing a scene.
func IsExportError(err error) bool {
	switch GetCode(err) {
	case ErrCodeExportEmptyContent, ErrCodeExportDegenerateSize, ErrCodeExportEncodeFailed:
		return true
	}
	return false
}

// Troubleshooting returns the generic guidance shown next to a failed load.
func Troubleshooting() []string {
	return []string{
		"Verify the file is a valid Draw.io/diagrams.net XML file",
		"Check that the file is not corrupted",
		"Try opening the file in Draw.io to verify it works, then export it again",
	}
}
