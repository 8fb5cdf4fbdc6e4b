package domain

import "errors"

// ErrorKind classifies a business failure so the transport layer can pick a
// proper status code instead of collapsing everything to 400.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	KindOutOfStock
	KindEmptyCart
	KindDuplicate
	KindValidation
	KindConflict
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func E(kind ErrorKind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind carried by err, or KindUnknown for plain errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
