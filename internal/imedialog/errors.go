package imedialog

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a dialog error
type ErrorKind int

const (
	// KindCodecUnavailable means the conversion machinery could not be
	// established. Permanent for the session.
	KindCodecUnavailable ErrorKind = iota + 1
	// KindConversionFailed means a single conversion failed on malformed or
	// over-length input. The previous buffer state is retained.
	KindConversionFailed
	// KindFilterRejected means a text or keyboard filter declined the input
	KindFilterRejected
	// KindCapacityExceeded means the text cannot be made to fit MaxTextLength
	KindCapacityExceeded
	// KindInvalidConfig means the dialog configuration was rejected at construction
	KindInvalidConfig
)

// Sentinel errors matched by errors.Is against any *DialogError of that kind
var (
	ErrCodecUnavailable = errors.New("codec unavailable")
	ErrConversionFailed = errors.New("conversion failed")
	ErrFilterRejected   = errors.New("filter rejected")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidConfig    = errors.New("invalid config")
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindCodecUnavailable:
		return "Codec Unavailable"
	case KindConversionFailed:
		return "Conversion Failed"
	case KindFilterRejected:
		return "Filter Rejected"
	case KindCapacityExceeded:
		return "Capacity Exceeded"
	case KindInvalidConfig:
		return "Invalid Config"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindCodecUnavailable:
		return ErrCodecUnavailable
	case KindConversionFailed:
		return ErrConversionFailed
	case KindFilterRejected:
		return ErrFilterRejected
	case KindCapacityExceeded:
		return ErrCapacityExceeded
	case KindInvalidConfig:
		return ErrInvalidConfig
	}
	return nil
}

// DialogError is returned by every fallible session and controller operation
type DialogError struct {
	Kind    ErrorKind // Category of error
	Op      string    // Operation that failed (e.g. "CopyTextToOrbisBuffer")
	Message string    // Human-readable error message
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *DialogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s (caused by: %v)", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DialogError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same kind
func (e *DialogError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func newError(kind ErrorKind, op, message string, err error) *DialogError {
	return &DialogError{
		Kind:    kind,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsCodecUnavailable checks if an error is a codec availability error
func IsCodecUnavailable(err error) bool {
	return errors.Is(err, ErrCodecUnavailable)
}

// IsConversionFailed checks if an error is a per-call conversion error
func IsConversionFailed(err error) bool {
	return errors.Is(err, ErrConversionFailed)
}

// IsFilterRejected checks if an error is a filter rejection
func IsFilterRejected(err error) bool {
	return errors.Is(err, ErrFilterRejected)
}

// IsCapacityExceeded checks if an error is a capacity error
func IsCapacityExceeded(err error) bool {
	return errors.Is(err, ErrCapacityExceeded)
}

// IsInvalidConfig checks if an error is a configuration error
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// KindOf returns the kind of the first *DialogError in err's chain, or 0
func KindOf(err error) ErrorKind {
	var dlgErr *DialogError
	if errors.As(err, &dlgErr) {
		return dlgErr.Kind
	}
	return 0
}
