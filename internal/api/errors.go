package api

import (
	"errors"
	"fmt"
)

// DomainError is a well-formed API reply without success: true. Message is
// the server's own text and is meant to be shown verbatim.
type DomainError struct {
	Status  int
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// TransportError covers everything that kept a reply envelope from being
// read: network failures, unreadable bodies and malformed JSON.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// UserMessage picks the text to show for a failed call: the server message for
// domain errors, fallback for transport errors, the error itself otherwise.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	if IsTransport(err) {
		return fallback
	}
	return err.Error()
}
