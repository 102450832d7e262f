package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
)

// -----------------------------------------------------------------------------
// Stack Trace Capture
// -----------------------------------------------------------------------------

// expectedPipelineErrorKinds are business-logic outcomes: a pipeline missing
// a baseline, a conflicting permit, a trigger type nobody registered. They
// happen constantly in normal operation and capturing a stack trace for each
// one would just be noise.
var expectedPipelineErrorKinds = map[apperrors.PipelineErrorKind]bool{
	apperrors.KindUnrecognizedTriggerType: true,
	apperrors.KindMissingSuccessTime:      true,
	apperrors.KindSuccessTimeConflict:     true,
	apperrors.KindMissingPermitContent:    true,
	apperrors.KindPermitContentConflict:   true,
	apperrors.KindMissingPipelinePermit:   true,
	apperrors.KindEventValidation:         true,
	apperrors.KindEventTimeConversion:     true,
}

// skipStackTraceCheckers is a list of functions that check if an error should skip stack trace capture.
// Each checker returns true if the error is an expected operational error.
// Add new error types here to extend the blocklist.
var skipStackTraceCheckers = []func(error) bool{
	// Context errors (expected in graceful shutdown)
	func(err error) bool { return errors.Is(err, context.Canceled) },
	func(err error) bool { return errors.Is(err, context.DeadlineExceeded) },
	func(err error) bool { return errors.Is(err, io.EOF) },

	// Network/transient errors (expected in distributed systems)
	apperrors.IsNetworkError,

	// Business-logic conflicts raised by the resolver and readiness evaluator
	isExpectedPipelineError,
}

// isExpectedPipelineError reports whether err is a *PipelineError whose kind
// is a normal business-logic outcome rather than an infrastructure failure.
func isExpectedPipelineError(err error) bool {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		return false
	}
	return expectedPipelineErrorKinds[kind]
}

// ShouldCaptureStackTrace determines if a stack trace should be captured for the given error.
// Returns false for expected operational errors (high frequency, known causes) to avoid
// performance overhead during error storms. Returns true for unexpected errors that
// indicate bugs or require investigation.
func ShouldCaptureStackTrace(err error) bool {
	if err == nil {
		return false
	}

	// Check all blocklist conditions
	for _, check := range skipStackTraceCheckers {
		if check(err) {
			return false
		}
	}

	// Capture stack trace for unexpected/internal errors
	return true
}

// CaptureStackTrace captures the current call stack and returns it as a slice of strings.
// Each string contains the file path, line number, and function name.
// The skip parameter specifies how many stack frames to skip:
//   - skip=0 starts from the caller of CaptureStackTrace
//   - skip=1 skips one additional level, etc.
func CaptureStackTrace(skip int) []string {
	const maxFrames = 32
	pcs := make([]uintptr, maxFrames)
	// +2 to skip runtime.Callers and CaptureStackTrace itself
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	var stack []string
	for {
		frame, more := frames.Next()
		stack = append(stack, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}
	return stack
}
