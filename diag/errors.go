// Package diag holds the fatal error taxonomy of a documentation build
// and the report of recoverable warnings collected along the way.
package diag

import (
	"errors"
	"fmt"
)

// Kind defines the category of a fatal error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindParse is source the front end cannot make sense of.
	KindParse
	// KindDuplicateID is two entities mapping to the same unique id.
	KindDuplicateID
	// KindMissingSource is a configured source file that cannot be read.
	KindMissingSource
	// KindConfig is an invalid or missing project file.
	KindConfig
	// KindIO is a failure writing build output.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindDuplicateID:
		return "duplicate_id"
	case KindMissingSource:
		return "missing_source"
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a fatal build error.
type Error struct {
	Kind       Kind
	Message    string
	Underlying error
	Attributes map[string]any
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a new Error of the specified kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf creates a new Error of the specified kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err as a new Error of the specified kind. It returns nil
// when err is nil.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Underlying: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Underlying: err}
}

// Attr attaches an attribute to an error. Errors that are not an
// *Error are wrapped as KindUnknown first.
func Attr(err error, key string, val any) error {
	if err == nil {
		return nil
	}

	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindUnknown, Message: err.Error(), Underlying: err}
	}
	if e.Attributes == nil {
		e.Attributes = make(map[string]any)
	}
	e.Attributes[key] = val
	return e
}

// GetKind returns the Kind of the outermost *Error in err's chain, or
// KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// GetAttributes collects the attributes of every *Error in the chain.
// Outer values win over inner ones.
func GetAttributes(err error) map[string]any {
	attrs := make(map[string]any)
	var e *Error
	for err != nil && errors.As(err, &e) {
		for k, v := range e.Attributes {
			if _, ok := attrs[k]; !ok {
				attrs[k] = v
			}
		}
		err = e.Underlying
	}
	return attrs
}
