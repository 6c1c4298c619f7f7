// Package simerr defines the simulator's fatal error taxonomy.
//
// Every error the core raises is one of a small closed set of kinds (see
// §7 of the specification). Call sites compare against these with
// errors.Is; the CLI layer is the only place that turns one into a process
// exit.
package simerr

import "fmt"

// Kind identifies a category of fatal simulation error.
type Kind uint8

// Error kinds, one per fatal condition the core can raise.
const (
	// BinaryNotFound means the input binary file could not be opened.
	BinaryNotFound Kind = iota
	// BinaryMalformed means a line of the input binary was not exactly
	// 32 ASCII '0'/'1' characters.
	BinaryMalformed
	// DecodeError means an instruction word used an opcode or
	// funct3/funct7 combination this decoder does not recognize.
	DecodeError
	// AlignmentError means a memory access address was not word-aligned.
	AlignmentError
	// OutOfBounds means a main-memory access fell outside the
	// configured address range.
	OutOfBounds
	// InvalidRegister means a register index was >= 32.
	InvalidRegister
	// CacheInconsistency means an active cache line's audit fields
	// disagreed with the address that indexed it — an implementation
	// bug, not a user-input error.
	CacheInconsistency
	// ConfigError means a cache or memory configuration parameter
	// violated a structural precondition (not a power of two, not
	// evenly divisible, zero tag bits, and so on).
	ConfigError
)

var names = [...]string{
	"binary not found",
	"binary malformed",
	"decode error",
	"alignment error",
	"out of bounds",
	"invalid register",
	"cache inconsistency",
	"config error",
}

// String returns the human-readable name of the error kind.
func (k Kind) String() string {
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown error"
}

// Error is a fatal simulation error tagged with its Kind.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

// New creates an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error of the given kind that wraps an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped error.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, simerr.Sentinel(simerr.OutOfBounds)) checks
// against a sentinel constructed from the Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel returns a zero-message *Error of the given kind, suitable for
// use as the target of errors.Is.
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
