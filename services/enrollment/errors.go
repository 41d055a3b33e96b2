package enrollment

import "errors"

// Kind classifies engine failures so the transport layer can map them to
// status codes without parsing messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalid
)

// Error is a validation or lookup failure with a caller-facing reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func notFound(reason string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

func forbidden(reason string) *Error {
	return &Error{Kind: KindForbidden, Reason: reason}
}

func conflict(reason string) *Error {
	return &Error{Kind: KindConflict, Reason: reason}
}

func invalid(reason string) *Error {
	return &Error{Kind: KindInvalid, Reason: reason}
}

// KindOf returns the failure kind carried by err, or KindUnknown for
// infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
