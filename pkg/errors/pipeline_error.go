package errors

import (
	"errors"
	"fmt"
	"strings"
)

// PipelineErrorKind names one of the failure modes the resolver, readiness
// evaluator, and relay can produce. See the doc comment on PipelineError for
// how each kind is raised.
type PipelineErrorKind string

const (
	KindUnrecognizedTriggerType PipelineErrorKind = "UnrecognizedTriggerType"
	KindMissingSuccessTime      PipelineErrorKind = "MissingSuccessTime"
	KindSuccessTimeConflict     PipelineErrorKind = "SuccessTimeConflict"
	KindMissingPermitContent    PipelineErrorKind = "MissingPermitContent"
	KindPermitContentConflict   PipelineErrorKind = "PermitContentConflict"
	KindDatetimeParseFailure    PipelineErrorKind = "DatetimeParseFailure"
	KindURLParseFailure         PipelineErrorKind = "UrlParseFailure"
	KindModelFetchFailure       PipelineErrorKind = "ModelFetchFailure"
	KindMissingPipelinePermit   PipelineErrorKind = "MissingPipelinePermit"
	KindStateMachineFetching    PipelineErrorKind = "StateMachineFetchingError"
	KindRelayTaskSuccess        PipelineErrorKind = "RelayTaskSuccessError"
	KindRelayTaskHeartbeat      PipelineErrorKind = "RelayTaskHeartbeatError"

	// Input envelope validation, raised before an Event ever reaches the
	// resolver.
	KindEventValidation     PipelineErrorKind = "EventValidationError"
	KindEventTimeConversion PipelineErrorKind = "EventTimeConversionError"

	// SigV4 request signing (internal/signing).
	KindCredentialsMissing     PipelineErrorKind = "CredentialsMissing"
	KindCredentialsUnavailable PipelineErrorKind = "CredentialsUnavailable"
	KindRequestBuildFailed     PipelineErrorKind = "RequestBuildFailed"
	KindSigningFailed          PipelineErrorKind = "SigningFailed"

	// KindAggregateFailure wraps one or more per-pipeline failures from a
	// single invocation's fan-out (internal/orchestrator). Its Message is a
	// newline-joined list of the underlying failures.
	KindAggregateFailure PipelineErrorKind = "AggregateFailure"

	// KindNetworkFailure marks a catalog API call that failed at the
	// transport level (connection refused/reset, timeout, DNS) rather than
	// with an application-level response, as classified by IsNetworkError.
	KindNetworkFailure PipelineErrorKind = "NetworkFailure"
)

// PipelineError is the coordinator's single error type: a kind from the
// spec's error taxonomy plus a human-readable message and, where available,
// the underlying cause.
type PipelineError struct {
	Kind    PipelineErrorKind
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *PipelineError with the same Kind, so
// callers can write errors.Is(err, &PipelineError{Kind: KindSuccessTimeConflict}).
func (e *PipelineError) Is(target error) bool {
	other, ok := target.(*PipelineError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newPipelineError(kind PipelineErrorKind, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: err}
}

func UnrecognizedTriggerType(message string) *PipelineError {
	return newPipelineError(KindUnrecognizedTriggerType, message, nil)
}

func MissingSuccessTime(message string) *PipelineError {
	return newPipelineError(KindMissingSuccessTime, message, nil)
}

func SuccessTimeConflict(message string) *PipelineError {
	return newPipelineError(KindSuccessTimeConflict, message, nil)
}

func MissingPermitContent(message string) *PipelineError {
	return newPipelineError(KindMissingPermitContent, message, nil)
}

func PermitContentConflict(message string) *PipelineError {
	return newPipelineError(KindPermitContentConflict, message, nil)
}

func DatetimeParseFailure(message string, err error) *PipelineError {
	return newPipelineError(KindDatetimeParseFailure, message, err)
}

func URLParseFailure(message string, err error) *PipelineError {
	return newPipelineError(KindURLParseFailure, message, err)
}

func ModelFetchFailure(message string, err error) *PipelineError {
	return newPipelineError(KindModelFetchFailure, message, err)
}

func MissingPipelinePermit(message string) *PipelineError {
	return newPipelineError(KindMissingPipelinePermit, message, nil)
}

func StateMachineFetching(message string, err error) *PipelineError {
	return newPipelineError(KindStateMachineFetching, message, err)
}

func RelayTaskSuccess(message string, err error) *PipelineError {
	return newPipelineError(KindRelayTaskSuccess, message, err)
}

func RelayTaskHeartbeat(message string, err error) *PipelineError {
	return newPipelineError(KindRelayTaskHeartbeat, message, err)
}

func EventValidation(message string) *PipelineError {
	return newPipelineError(KindEventValidation, message, nil)
}

func EventTimeConversion(message string, err error) *PipelineError {
	return newPipelineError(KindEventTimeConversion, message, err)
}

func CredentialsMissing(message string) *PipelineError {
	return newPipelineError(KindCredentialsMissing, message, nil)
}

func CredentialsUnavailable(message string, err error) *PipelineError {
	return newPipelineError(KindCredentialsUnavailable, message, err)
}

func RequestBuildFailed(message string, err error) *PipelineError {
	return newPipelineError(KindRequestBuildFailed, message, err)
}

func SigningFailed(message string, err error) *PipelineError {
	return newPipelineError(KindSigningFailed, message, err)
}

// Aggregate collects multiple per-pipeline failure messages from one
// invocation's fan-out into a single error.
func Aggregate(messages []string) *PipelineError {
	return newPipelineError(KindAggregateFailure, strings.Join(messages, "\n"), nil)
}

// NetworkFailure wraps a catalog API call that failed at the transport
// level, so callers and metrics can tell it apart from a well-formed error
// response.
func NetworkFailure(message string, err error) *PipelineError {
	return newPipelineError(KindNetworkFailure, message, err)
}

// KindOf returns the PipelineErrorKind of err, or ("", false) if err is not
// a *PipelineError.
func KindOf(err error) (PipelineErrorKind, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
