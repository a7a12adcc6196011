package common

import "errors"

// DetailedError pairs a sentinel with a message that is safe to show to API
// clients. errors.Is(err, sentinel) keeps working through it.
type DetailedError struct {
	Err     error
	Message string
}

// Detail wraps sentinel with a client-facing message.
func Detail(sentinel error, message string) error {
	return &DetailedError{Err: sentinel, Message: message}
}

func (e *DetailedError) Error() string { return e.Message }

func (e *DetailedError) Unwrap() error { return e.Err }

// PublicMessage returns the client-facing message attached to err with
// Detail, or fallback if there is none.
func PublicMessage(err error, fallback string) string {
	var de *DetailedError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
