package client

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when the server has no book with the requested id.
type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("book %d not found", e.ID)
}

// UnexpectedStatusError is returned for any status the operation does not model.
type UnexpectedStatusError struct {
	Op         string
	StatusCode int
	// Message is the server's error text, when it sent one.
	Message string
}

func (e *UnexpectedStatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// TransportError wraps network, I/O and decoding failures.
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

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
