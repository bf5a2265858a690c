package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface keeps the transport layer ignorant of
// individual error types.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a folder, document or submission was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates malformed input (missing name, unknown folder id, ...)
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates missing or invalid credentials
	UnauthorizedError struct {
		Message string
	}

	// PermissionError indicates a role or ownership check failed
	PermissionError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *PermissionError) Error() string   { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *PermissionError) StatusCode() int   { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPermission   = errors.New("permission denied")
	ErrStorage      = errors.New("storage failure")
	ErrConversion   = errors.New("conversion failed")
)

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *PermissionError) Is(target error) bool   { return target == ErrPermission }

// ConflictError represents a resource conflict: a cycle in a folder move,
// a non-empty folder deletion, a duplicate sibling name, or a submission
// that already reached a terminal state.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (document, folder, submission)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StorageError wraps a filesystem or database failure. The wrapped cause is
// kept for logging but Error() never exposes internal absolute paths.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) StatusCode() int {
	return http.StatusInternalServerError
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// ConversionError indicates the external rendering service failed or timed
// out. Callers degrade to "preview unavailable" instead of failing the
// enclosing request.
type ConversionError struct {
	Message string
	Err     error
}

func (e *ConversionError) Error() string {
	return e.Message
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) StatusCode() int {
	return http.StatusServiceUnavailable
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}
