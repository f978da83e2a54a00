package resource

import "fmt"

// ErrorKind buckets every client failure into the four cases callers render
// differently: transport trouble, server-side validation, a missing record
// and everything else.
type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindValidation
	KindNotFound
	KindServer
)

// Error is the normalized failure every client method returns. Message is
// always human-readable; server-provided messages win over generic text.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a missing-record failure.
func IsNotFound(err error) bool {
	re, ok := err.(*Error)
	return ok && re.Kind == KindNotFound
}

// IsValidation reports whether err carries a server validation message.
func IsValidation(err error) bool {
	re, ok := err.(*Error)
	return ok && re.Kind == KindValidation
}

func transportErr(op string, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: fmt.Sprintf("failed to %s: %v", op, err),
	}
}

// normalizeHTTP converts a non-2xx response into an Error, preferring the
// server's message field verbatim.
func normalizeHTTP(op string, status int, serverMsg string) *Error {
	switch {
	case status == 404:
		msg := serverMsg
		if msg == "" {
			msg = "record not found"
		}
		return &Error{Kind: KindNotFound, Status: status, Message: msg}
	case status >= 400 && status < 500:
		msg := serverMsg
		if msg == "" {
			msg = fmt.Sprintf("failed to %s: request rejected (%d)", op, status)
		}
		return &Error{Kind: KindValidation, Status: status, Message: msg}
	default:
		msg := serverMsg
		if msg == "" {
			msg = fmt.Sprintf("failed to %s: server error (%d)", op, status)
		}
		return &Error{Kind: KindServer, Status: status, Message: msg}
	}
}
