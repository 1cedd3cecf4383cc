// Package flatfile provides error types for flat-file tokenizing.
package flatfile

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by the typed errors below. Use errors.Is to test for them.
var (
	// ErrBufferTooSmall indicates a single field does not fit in MaxBufferSize characters.
	ErrBufferTooSmall = errors.New("MaxBufferSize exceeded. Try increasing the buffer size")

	// ErrTooManyColumns indicates a row produced more fields than ExpectedColumnCount.
	ErrTooManyColumns = errors.New("too many columns")

	// ErrUnexpectedColumnCount indicates a finished row has the wrong number of fields.
	ErrUnexpectedColumnCount = errors.New("unexpected column count")

	// ErrInvalidState indicates an operation that is not allowed in the parser's current state.
	ErrInvalidState = errors.New("invalid parser state")

	// ErrInvalidArgument indicates a malformed configuration value or a nil/missing input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ParsingError is returned by Read when the input violates the configured rules.
// FileRow is the physical row being scanned and Column the number of fields
// already produced for that row when the failure was detected.
type ParsingError struct {
	Message string
	FileRow int
	Column  int
	Err     error
}

// Error returns the message followed by its position.
func (e *ParsingError) Error() string {
	return fmt.Sprintf("%s [Row: %d, Column: %d]", e.Message, e.FileRow, e.Column)
}

// Unwrap returns the underlying sentinel.
func (e *ParsingError) Unwrap() error {
	return e.Err
}

// StateError reports an operation attempted while the parser was in a state that forbids it.
type StateError struct {
	Op    string
	State State
	msg   string
}

func (e *StateError) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("flatfile: %s: %s", e.Op, e.msg)
	}
	return fmt.Sprintf("flatfile: %s not allowed while %s", e.Op, e.State)
}

// Unwrap returns ErrInvalidState.
func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// ArgumentError reports a rejected configuration value or source argument.
// The parser state is left unchanged when one is returned.
type ArgumentError struct {
	Field   string
	Message string
	// Err, when set, is a more specific cause such as os.ErrNotExist.
	Err error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("flatfile: invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns ErrInvalidArgument and, when present, the specific cause.
func (e *ArgumentError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidArgument, e.Err}
	}
	return []error{ErrInvalidArgument}
}

func (p *Parser) parsingError(msg string, sentinel error) error {
	return &ParsingError{
		Message: msg,
		FileRow: p.fileRow,
		Column:  len(p.fields),
		Err:     sentinel,
	}
}

func (p *Parser) stateError(op string) error {
	return &StateError{Op: op, State: p.state}
}
