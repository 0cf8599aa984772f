package parquet

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrorKind classifies the failure modes of the write path (§7 of the
// core spec). The kind is checked programmatically via KindOf(err), not by
// matching error strings.
type ErrorKind int

const (
	// IllegalState: an operation was called in the wrong FileWriter state.
	IllegalState ErrorKind = iota
	// InvalidRecord: the shredder hit a missing required field or a
	// value incompatible with its leaf's primitive type.
	InvalidRecord
	// EncodingOverflow: a value exceeded its declared bit width.
	EncodingOverflow
	// MalformedStream: a corrupt varint or truncated RLE run.
	MalformedStream
	// IOFailure: the sink or compressor returned an error.
	IOFailure
	// ConfigurationError: the schema cannot be reconciled with the
	// provided configuration or data source.
	ConfigurationError
)

func (k ErrorKind) String() string {
	switch k {
	case IllegalState:
		return "IllegalState"
	case InvalidRecord:
		return "InvalidRecord"
	case EncodingOverflow:
		return "EncodingOverflow"
	case MalformedStream:
		return "MalformedStream"
	case IOFailure:
		return "IOFailure"
	case ConfigurationError:
		return "ConfigurationError"
	default:
		return "Unknown"
	}
}

// WriterError is the concrete error type returned across the write path;
// Kind distinguishes the handling each caller should apply per §7.
type WriterError struct {
	Kind ErrorKind
	msg  string
	// cause, when set, carries the wrapped root cause (e.g. a sink or
	// compressor failure) with its stack via github.com/pkg/errors.
	cause error
}

func (e *WriterError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("parquet: %s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("parquet: %s: %s", e.Kind, e.msg)
}

func (e *WriterError) Unwrap() error { return e.cause }

func newErr(kind ErrorKind, format string, args ...any) *WriterError {
	return &WriterError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapErr(kind ErrorKind, cause error, format string, args ...any) *WriterError {
	return &WriterError{Kind: kind, msg: fmt.Sprintf(format, args...), cause: pkgerrors.WithStack(cause)}
}

// KindOf reports the ErrorKind of err, if err (or something it wraps) is
// a *WriterError.
func KindOf(err error) (ErrorKind, bool) {
	var we *WriterError
	if !errors.As(err, &we) {
		return 0, false
	}
	return we.Kind, true
}
