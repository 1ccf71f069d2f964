package process

import (
	"fmt"

	"golang.org/x/xerrors"
)

// ErrorCode identifies one of the stable error kinds returned by this
// package. Every failure surfaced to callers carries exactly one code.
type ErrorCode int

const (
	// EInval means the caller violated an operation's contract (nil
	// process, wrong status, wrong stream). Never recovered; fix the call.
	EInval ErrorCode = iota + 1

	// EPipe means the peer closed a pipe end we were using, or a poll had
	// no valid endpoints left to wait on. The local endpoint is closed by
	// the library before the error is returned.
	EPipe

	// ETimedout means a wait or poll expired without being satisfied.
	// State is unchanged; the operation can be retried.
	ETimedout

	// ENoMem means an allocation failed. Partial state is rolled back.
	ENoMem

	// ESystem is the catch-all for platform failures; the underlying OS
	// error is wrapped and reachable via errors.Unwrap.
	ESystem
)

var errorStrings = map[ErrorCode]string{
	EInval:    "invalid argument",
	EPipe:     "broken pipe",
	ETimedout: "wait timed out",
	ENoMem:    "out of memory",
	ESystem:   "system error",
}

// Strerror maps an error code to a human-readable string.
func Strerror(code ErrorCode) string {
	if s, ok := errorStrings[code]; ok {
		return s
	}
	return "unknown error"
}

// Error is an error which carries an ErrorCode so that calling code has an
// easier job to do, adapted from
// https://medium.com/yakka/better-go-error-handling-with-xerrors-1987650e0c79
type Error struct {
	Code    ErrorCode
	Message string
	cause   error
	frame   xerrors.Frame
}

// FormatError is a function
func (e *Error) FormatError(p xerrors.Printer) error {
	p.Printf("%s: %s", Strerror(e.Code), e.Message)
	e.frame.Format(p)
	return e.cause
}

// Format is a function
func (e *Error) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", Strerror(e.Code), e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HasErrorCode is a function
func HasErrorCode(err error, code ErrorCode) bool {
	var perr *Error
	if xerrors.As(err, &perr) {
		return perr.Code == code
	}
	return false
}

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		frame:   xerrors.Caller(1),
	}
}

func errPipe(message string) *Error {
	return &Error{Code: EPipe, Message: message, frame: xerrors.Caller(1)}
}

func errTimedout(message string) *Error {
	return &Error{Code: ETimedout, Message: message, frame: xerrors.Caller(1)}
}

// systemError wraps a platform error in the ESystem kind. Returns nil when
// err is nil so syscall results can be wrapped unconditionally.
func systemError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    ESystem,
		Message: err.Error(),
		cause:   err,
		frame:   xerrors.Caller(1),
	}
}
