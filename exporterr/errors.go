// Package exporterr defines the error categories an export run can end with
// and how each maps to a process exit code.
package exporterr

import (
	"errors"
	"fmt"
)

// Kind is the category of an export failure.
type Kind string

const (
	// KindUnknown is used for errors that carry no category.
	KindUnknown Kind = "unknown"
	// KindConfigMissing marks a missing or unreadable configuration file.
	KindConfigMissing Kind = "config_missing"
	// KindQuerySyntax marks a query rejected by validation.
	KindQuerySyntax Kind = "query_syntax"
	// KindConnection marks an unreachable database or rejected credentials.
	KindConnection Kind = "connection"
	// KindQuery marks a failure executing the count or main query.
	KindQuery Kind = "query"
	// KindRowProcessing marks a single row that could not be read. Never fatal.
	KindRowProcessing Kind = "row_processing"
	// KindWrite marks an output file the filesystem refused.
	KindWrite Kind = "write"
)

// ErrCredentialsCreated is returned when the credential file did not exist and
// a placeholder was written in its place. The run stops without connecting.
var ErrCredentialsCreated = &Error{
	Kind: KindConfigMissing,
	Op:   "credentials",
	Err:  errors.New("placeholder credential file created; edit it and run again"),
}

// Error is an export failure with its category and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with kind and op. It returns nil when err is nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds an error of the given kind from a format string.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Connection wraps err as a connection failure.
func Connection(op string, err error) error { return New(KindConnection, op, err) }

// QuerySyntax wraps err as a validation failure.
func QuerySyntax(op string, err error) error { return New(KindQuerySyntax, op, err) }

// Query wraps err as a query execution failure.
func Query(op string, err error) error { return New(KindQuery, op, err) }

// Write wraps err as an output failure.
func Write(op string, err error) error { return New(KindWrite, op, err) }

// ConfigMissing wraps err as a configuration failure.
func ConfigMissing(op string, err error) error { return New(KindConfigMissing, op, err) }

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrCredentialsCreated) {
		return 0
	}
	switch KindOf(err) {
	case KindConfigMissing:
		return 2
	case KindConnection:
		return 3
	case KindQuerySyntax:
		return 4
	case KindQuery:
		return 5
	case KindWrite:
		return 6
	default:
		return 1
	}
}
