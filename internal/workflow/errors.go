package workflow

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a stage failure
type ErrorKind int

const (
	// CollectionError: an asset store query failed. Fatal.
	CollectionError ErrorKind = iota + 1
	// ProviderTransientError: timeout or rate limit after local retries. Degrades to fallback.
	ProviderTransientError
	// ProviderResponseError: the provider answered with an unusable payload. Degrades to fallback.
	ProviderResponseError
	// RenderError: the renderer was missing required input. Fatal.
	RenderError
	// QualityBelowThreshold: retries exhausted without passing the quality gate. Fatal.
	QualityBelowThreshold
	// PersistenceError: the final report could not be written.
	PersistenceError
	// StagePanic: a stage, or a store or provider it called, panicked. Fatal.
	StagePanic
)

func (k ErrorKind) String() string {
	switch k {
	case CollectionError:
		return "CollectionError"
	case ProviderTransientError:
		return "ProviderTransientError"
	case ProviderResponseError:
		return "ProviderResponseError"
	case RenderError:
		return "RenderError"
	case QualityBelowThreshold:
		return "QualityBelowThreshold"
	case PersistenceError:
		return "PersistenceError"
	case StagePanic:
		return "StagePanic"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Fatal reports whether the kind ends the run
func (k ErrorKind) Fatal() bool {
	switch k {
	case ProviderTransientError, ProviderResponseError:
		return false
	default:
		return true
	}
}

// Sentinel errors a Provider implementation wraps so the engine can classify failures
var (
	ErrProviderTransient = errors.New("transient provider error")
	ErrMissingCredential = errors.New("missing provider credential")
)

// StageError is the only error type that crosses a stage boundary
type StageError struct {
	Kind  ErrorKind
	Stage Stage
	Err   error
}

func newStageError(kind ErrorKind, stage Stage, err error) *StageError {
	return &StageError{Kind: kind, Stage: stage, Err: err}
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s in %s", e.Kind, e.Stage)
	}
	return fmt.Sprintf("%s in %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches another *StageError of the same kind, so callers can write
// errors.Is(err, &StageError{Kind: PersistenceError}). A target without a
// Stage matches any stage.
func (e *StageError) Is(target error) bool {
	t, ok := target.(*StageError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Stage == 0 || t.Stage == e.Stage)
}

// KindOf extracts the ErrorKind from err, if it carries one
func KindOf(err error) (ErrorKind, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
