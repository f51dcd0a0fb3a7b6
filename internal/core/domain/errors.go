package domain

import (
	"context"
	"errors"
	"fmt"
)

// ============================================================================
// Request Construction Errors
// ============================================================================

var (
	ErrEmptyPath         = errors.New("request path is required")
	ErrUnsupportedScheme = errors.New("absolute request path must use http or https")
	ErrMissingCredential = errors.New("no API key configured")
)

// ============================================================================
// Runner Errors
// ============================================================================

var (
	ErrUnknownCheck = errors.New("unknown check")
	ErrNoChecks     = errors.New("no checks selected")
)

// ============================================================================
// Run History Errors
// ============================================================================

var (
	ErrRunNotFound     = errors.New("verification run not found")
	ErrHistoryDisabled = errors.New("run history is disabled")
)

// ConstructionError is returned when a RequestSpec cannot be turned into a URL.
// It is never retried.
type ConstructionError struct {
	Path string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("build request %q: %v", e.Path, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// TransportError means no usable HTTP response was received: connection
// failures, timeouts and unreadable bodies. The check outcome is inconclusive.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ContractViolation is a received response that does not hold an asserted
// property.
type ContractViolation struct {
	Property string
	Expected string
	Observed string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("%s: expected %s, observed %s", e.Property, e.Expected, e.Observed)
}

// Violation builds a ContractViolation, formatting expected and observed with %v.
func Violation(property string, expected, observed interface{}) *ContractViolation {
	return &ContractViolation{
		Property: property,
		Expected: fmt.Sprintf("%v", expected),
		Observed: fmt.Sprintf("%v", observed),
	}
}

// Error kinds reported on a CheckResult.
const (
	KindConstruction = "construction"
	KindTransport    = "transport"
	KindContract     = "contract"
	KindInternal     = "internal"
)

// Classify maps a check error to the status and kind it is reported with.
// A nil error is a pass.
func Classify(err error) (CheckStatus, string) {
	if err == nil {
		return CheckPassed, ""
	}

	var (
		construction *ConstructionError
		transport    *TransportError
		violation    *ContractViolation
	)
	switch {
	case errors.As(err, &construction):
		return CheckFailed, KindConstruction
	case errors.As(err, &violation):
		return CheckFailed, KindContract
	case errors.As(err, &transport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return CheckInconclusive, KindTransport
	default:
		return CheckFailed, KindInternal
	}
}
