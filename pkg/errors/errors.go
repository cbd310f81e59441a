package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// NoAction is the action id carried by failures that happen before any
// manifest action runs.
const NoAction = "none"

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"

	// Profile and manifest errors
	ErrProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrProfileInvalid      ErrorCode = "PROFILE_INVALID"
	ErrManifestNotFound    ErrorCode = "MANIFEST_NOT_FOUND"
	ErrManifestInvalid     ErrorCode = "MANIFEST_INVALID"
	ErrUnknownTarget       ErrorCode = "UNKNOWN_TARGET"
	ErrUnsupportedStrategy ErrorCode = "UNSUPPORTED_STRATEGY"
	ErrTargetInvalid       ErrorCode = "TARGET_INVALID"

	// Strategy errors
	ErrSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"
	ErrSourceInvalid  ErrorCode = "SOURCE_INVALID"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"

	// State errors
	ErrStateLoad    ErrorCode = "STATE_LOAD"
	ErrStateSave    ErrorCode = "STATE_SAVE"
	ErrHistoryWrite ErrorCode = "HISTORY_WRITE"

	// Transaction errors
	ErrApplyFailed         ErrorCode = "APPLY_FAILED"
	ErrUnwindFailed        ErrorCode = "UNWIND_FAILED"
	ErrTxnNotFound         ErrorCode = "TXN_NOT_FOUND"
	ErrAlreadyRolledBack   ErrorCode = "ALREADY_ROLLED_BACK"
	ErrNoRollbackCandidate ErrorCode = "NO_ROLLBACK_CANDIDATE"
	ErrBackupMissing       ErrorCode = "BACKUP_MISSING"
)

// PortableConfigError is the single error kind surfaced by the engine.
// Failures are told apart by Code and message, never by Go type.
type PortableConfigError struct {
	Code     ErrorCode
	Message  string
	ActionID string
	Details  map[string]interface{}
	Wrapped  error
	// Unwind is set when undoing a failed apply failed as well. The project
	// may then be left partially mutated.
	Unwind error
}

// Error implements the error interface
func (e *PortableConfigError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	if e.Unwind != nil {
		msg = fmt.Sprintf("%s; unwind failed: %v", msg, e.Unwind)
	}
	return msg
}

// Unwrap exposes both the cause and the unwind failure to errors.Is/As.
func (e *PortableConfigError) Unwrap() []error {
	var errs []error
	if e.Wrapped != nil {
		errs = append(errs, e.Wrapped)
	}
	if e.Unwind != nil {
		errs = append(errs, e.Unwind)
	}
	return errs
}

// Is implements errors.Is interface
func (e *PortableConfigError) Is(target error) bool {
	var targetErr *PortableConfigError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PortableConfigError with the given code and message
func New(code ErrorCode, message string) *PortableConfigError {
	return &PortableConfigError{
		Code:     code,
		Message:  message,
		ActionID: NoAction,
		Details:  make(map[string]interface{}),
	}
}

// Newf creates a new PortableConfigError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PortableConfigError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a PortableConfigError
func Wrap(err error, code ErrorCode, message string) *PortableConfigError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PortableConfigError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithAction records the manifest action that failed
func (e *PortableConfigError) WithAction(actionID string) *PortableConfigError {
	if actionID == "" {
		actionID = NoAction
	}
	e.ActionID = actionID
	return e
}

// WithUnwind attaches the error raised while undoing a failed apply
func (e *PortableConfigError) WithUnwind(err error) *PortableConfigError {
	e.Unwind = err
	return e
}

// WithDetail adds a detail to the error
func (e *PortableConfigError) WithDetail(key string, value interface{}) *PortableConfigError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var pcErr *PortableConfigError
	if errors.As(err, &pcErr) {
		return pcErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PortableConfigError
func GetErrorCode(err error) ErrorCode {
	var pcErr *PortableConfigError
	if errors.As(err, &pcErr) {
		return pcErr.Code
	}
	return ErrUnknown
}

// GetActionID returns the failing action id carried by err, or NoAction
func GetActionID(err error) string {
	var pcErr *PortableConfigError
	if errors.As(err, &pcErr) && pcErr.ActionID != "" {
		return pcErr.ActionID
	}
	return NoAction
}
