package grasp

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/syssam/grasp/graph"
)

// Bootstrap creates the private disposable store used by sessions that own
// their handle, classifying any startup failure.
//
// Fatal failures (the engine itself did not come up) are logged and
// returned wrapped in a BootstrapError; halting on them is the host's
// decision. Transient failures come back as retryable BootstrapErrors.
// Anything else is returned unwrapped so the caller sees the original
// condition rather than a bootstrap envelope.
func Bootstrap(cfg graph.Config, log *slog.Logger) (graph.Store, error) {
	store, err := graph.Open(cfg)
	if err == nil {
		return store, nil
	}
	switch BootstrapClassOf(err) {
	case ClassFatal:
		log.Error("fatal failure during store bootstrap", "error", err)
		return nil, &BootstrapError{Class: ClassFatal, Err: err}
	case ClassRetryable:
		return nil, &BootstrapError{Class: ClassRetryable, Err: err}
	default:
		return nil, err
	}
}

// BootstrapClassOf classifies a store startup failure. Cancellation,
// deadline expiry and engine-busy conditions are retryable; a failed
// startup stage (engine open, pragma, schema, statement preparation) is
// fatal; everything else is caller-visible.
func BootstrapClassOf(err error) BootstrapClass {
	switch {
	case err == nil:
		return ClassCallerVisible
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ClassRetryable
	case isBusy(err):
		return ClassRetryable
	case graph.IsStartupError(err):
		return ClassFatal
	default:
		return ClassCallerVisible
	}
}

// isBusy reports engine lock contention, which resolves on retry.
func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
