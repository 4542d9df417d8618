package sppfcpg

import "fmt"

// Kind is the closed taxonomy of failure modes a caller of this package can
// recover from. None of these represent a process-wide fault; every
// operation that can fail reports one of these and leaves its receiver
// usable (or, for Builder, documents that the instance must be discarded).
type Kind byte

const (
	// BadMagic means the image did not begin with the format's magic tag.
	BadMagic Kind = iota + 1
	// UnsupportedVersion means the header's version field is not 1.
	UnsupportedVersion
	// Truncated means the image is shorter than its declared structures require.
	Truncated
	// OutOfRange means an offset/length pair fell outside the image bounds.
	OutOfRange
	// Unterminated means a string read found no terminating zero byte in bounds.
	Unterminated
	// TypeMismatch means a typed value accessor was used against a value of a different kind.
	TypeMismatch
	// InvalidUtf8 means a string-typed region did not contain valid UTF-8.
	InvalidUtf8
	// InvalidArgument means a caller-supplied argument (e.g. an unknown value kind) was invalid.
	InvalidArgument
	// NotFound means a requested property key was not present.
	NotFound
	// IoFailure means an underlying file or stream operation failed.
	IoFailure
	// UseAfterFree means an accessor was used after its owning Buffer was disposed.
	UseAfterFree
	// BuilderStateError means the Builder was used out of its required sequence (e.g. Build called twice).
	BuilderStateError
)

func (k Kind) String() string {
	switch k {
	case BadMagic:
		return "BadMagic"
	case UnsupportedVersion:
		return "UnsupportedVersion"
	case Truncated:
		return "Truncated"
	case OutOfRange:
		return "OutOfRange"
	case Unterminated:
		return "Unterminated"
	case TypeMismatch:
		return "TypeMismatch"
	case InvalidUtf8:
		return "InvalidUtf8"
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case IoFailure:
		return "IoFailure"
	case UseAfterFree:
		return "UseAfterFree"
	case BuilderStateError:
		return "BuilderStateError"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by this package. Callers that
// need to branch on failure category should compare against Kind via
// errors.Is(err, sppfcpg.BadMagic) or inspect a *sppfcpg.Error directly.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, sppfcpg.OutOfRange)-style comparisons work: a Kind
// value used as the target of errors.Is matches any *Error of that Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// Error makes Kind satisfy the error interface, so a Kind can be passed
// directly as the target of errors.Is (sppfcpg.OutOfRange is not an error by
// default; this method makes errors.Is(err, sppfcpg.OutOfRange) work from
// the Kind side too).
func (k Kind) Error() string { return k.String() }

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}
