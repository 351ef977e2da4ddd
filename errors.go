package grasp

import (
	"errors"
	"fmt"

	"github.com/syssam/grasp/graph"
)

// Standard sentinel errors for session operations.
var (
	// ErrStopped is returned by every operation invoked after Stop.
	ErrStopped = errors.New("grasp: session stopped")

	// ErrNoExecutor is returned when a query operation is invoked on a
	// session constructed without an Executor.
	ErrNoExecutor = errors.New("grasp: no query executor configured")

	// ErrNoMerger is returned when a merge operation is invoked on a
	// session constructed without a Merger.
	ErrNoMerger = errors.New("grasp: no merger configured")

	// ErrNoExporter is returned when an export operation is invoked on a
	// session constructed without the matching Exporter.
	ErrNoExporter = errors.New("grasp: no exporter configured")
)

// InvalidVersionError reports a version selector that does not match the
// selector grammar. The previous selector is left untouched.
type InvalidVersionError struct {
	Version string
}

// Error returns the error string.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("grasp: incorrect version string %q", e.Version)
}

// NewInvalidVersionError returns a new InvalidVersionError for the input.
func NewInvalidVersionError(version string) *InvalidVersionError {
	return &InvalidVersionError{Version: version}
}

// IsInvalidVersion returns true if the error is an InvalidVersionError.
func IsInvalidVersion(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidVersionError
	return errors.As(err, &e)
}

// SyntaxError is the error vocabulary merge collaborators use for a
// grammatical violation in a textual graph description.
type SyntaxError struct {
	Msg string
	Err error
}

// Error returns the error string.
func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grasp: syntax error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("grasp: syntax error: %s", e.Msg)
}

// Unwrap returns the underlying error.
func (e *SyntaxError) Unwrap() error { return e.Err }

// NewSyntaxError returns a new SyntaxError.
func NewSyntaxError(msg string, err error) *SyntaxError {
	return &SyntaxError{Msg: msg, Err: err}
}

// IsSyntaxError returns true if the error chain contains a SyntaxError.
func IsSyntaxError(err error) bool {
	if err == nil {
		return false
	}
	var e *SyntaxError
	return errors.As(err, &e)
}

// StructureError is the error vocabulary merge collaborators use for a
// structural violation, e.g. a relationship referencing an undefined
// entity.
type StructureError struct {
	Msg string
	Err error
}

// Error returns the error string.
func (e *StructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grasp: structure error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("grasp: structure error: %s", e.Msg)
}

// Unwrap returns the underlying error.
func (e *StructureError) Unwrap() error { return e.Err }

// NewStructureError returns a new StructureError.
func NewStructureError(msg string, err error) *StructureError {
	return &StructureError{Msg: msg, Err: err}
}

// IsStructureError returns true if the error chain contains a
// StructureError. Store constraint violations count as structural.
func IsStructureError(err error) bool {
	if err == nil {
		return false
	}
	var e *StructureError
	return errors.As(err, &e) || graph.IsConstraintError(err)
}

// MergeError reports a failed merge. It carries the original description
// so callers can display or log the offending text, and records whether
// the failure was grammatical (Syntax) or structural.
type MergeError struct {
	Description string
	Syntax      bool
	Err         error
}

// Error returns the error string.
func (e *MergeError) Error() string {
	if e.Syntax {
		return fmt.Sprintf("grasp: syntax error merging:\n%s: %v", e.Description, e.Err)
	}
	return fmt.Sprintf("grasp: error merging:\n%s: %v", e.Description, e.Err)
}

// Unwrap returns the underlying error.
func (e *MergeError) Unwrap() error { return e.Err }

// NewMergeError wraps a merge failure, classifying it as grammatical or
// structural from the cause.
func NewMergeError(description string, err error) *MergeError {
	return &MergeError{
		Description: description,
		Syntax:      IsSyntaxError(err),
		Err:         err,
	}
}

// IsMergeError returns true if the error is a MergeError.
func IsMergeError(err error) bool {
	if err == nil {
		return false
	}
	var e *MergeError
	return errors.As(err, &e)
}

// BootstrapClass classifies a private-store bootstrap failure. The halting
// decision for fatal failures belongs to the host process, not to this
// package.
type BootstrapClass int

const (
	// ClassCallerVisible failures are returned to the caller unwrapped;
	// the caller may retry, report, or abort.
	ClassCallerVisible BootstrapClass = iota
	// ClassRetryable failures are transient (cancellation, deadline,
	// engine busy) and may succeed on a later attempt.
	ClassRetryable
	// ClassFatal failures mean the process cannot continue in a
	// half-initialized state: the engine itself failed to come up.
	ClassFatal
)

// String returns the class name.
func (c BootstrapClass) String() string {
	switch c {
	case ClassRetryable:
		return "retryable"
	case ClassFatal:
		return "fatal"
	default:
		return "caller-visible"
	}
}

// BootstrapError reports a classified private-store bootstrap failure.
// Caller-visible failures are never wrapped in a BootstrapError; they are
// returned as-is.
type BootstrapError struct {
	Class BootstrapClass
	Err   error
}

// Error returns the error string.
func (e *BootstrapError) Error() string {
	return fmt.Sprintf("grasp: store bootstrap failed (%s): %v", e.Class, e.Err)
}

// Unwrap returns the underlying error.
func (e *BootstrapError) Unwrap() error { return e.Err }

// IsFatalBootstrap returns true if the error is a fatal bootstrap failure.
func IsFatalBootstrap(err error) bool {
	if err == nil {
		return false
	}
	var e *BootstrapError
	return errors.As(err, &e) && e.Class == ClassFatal
}

// IsRetryableBootstrap returns true if the error is a transient bootstrap
// failure.
func IsRetryableBootstrap(err error) bool {
	if err == nil {
		return false
	}
	var e *BootstrapError
	return errors.As(err, &e) && e.Class == ClassRetryable
}
