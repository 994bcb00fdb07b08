package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can react to the category
// instead of parsing messages.
type Kind string

const (
	// KindConfiguration means required local credentials or settings are
	// missing. No network call was attempted.
	KindConfiguration Kind = "configuration"
	// KindAuthentication means the remote rejected our credentials (401/403).
	KindAuthentication Kind = "authentication"
	// KindNotFound means the endpoint or resource is absent, usually a
	// permalink or routing misconfiguration on the remote side.
	KindNotFound Kind = "not_found"
	// KindTransport means the request never produced a usable response:
	// DNS, TLS, connection or scheme problems.
	KindTransport Kind = "transport"
	// KindMalformedResponse means the remote answered with something that is
	// not the JSON we asked for, e.g. an HTML login page.
	KindMalformedResponse Kind = "malformed_response"
	// KindRemoteBusiness means the remote explicitly reported a failure and
	// supplied its own message.
	KindRemoteBusiness Kind = "remote_business"
	// KindUnmappedStatus means a local order status has no remote
	// equivalent. This is a declared gap, not a remote failure.
	KindUnmappedStatus Kind = "unmapped_status"
	// KindConflict means the operation collides with in-flight or already
	// applied local state.
	KindConflict Kind = "conflict"
)

// Error carries a failure kind plus a message meant to be shown to the
// operator as-is.
type Error struct {
	// Kind is the failure category.
	Kind Kind
	// Message is the user-facing diagnostic.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given kind and formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that keeps cause available for unwrapping.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of err, or an empty Kind for non-classified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the operator-facing message of err, falling back to
// err.Error() for plain errors.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// HTTPStatus maps a classified error to the response status the handlers use.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindConfiguration, KindUnmappedStatus:
		return http.StatusUnprocessableEntity
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTransport, KindMalformedResponse:
		return http.StatusBadGateway
	case KindRemoteBusiness:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
