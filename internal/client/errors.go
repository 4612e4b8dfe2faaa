package client

import (
	"errors"
	"fmt"
)

// ErrAlreadySubscribed is returned by Subscribe while a previous push
// connection from the same client has not reached Closed.
var ErrAlreadySubscribed = errors.New("push channel already subscribed")

// TransportError describes a failed request/response call. HTTPStatus is 0
// when the backend could not be reached at all.
type TransportError struct {
	Op         string
	HTTPStatus int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s: HTTP error! status: %d", e.Op, e.HTTPStatus)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": transport failure"
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is returned for push frames or response bodies that do not
// have the expected shape.
type ProtocolError struct {
	Reason string
	Frame  string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return "protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsUnreachable reports whether err is a transport failure with no HTTP
// response, i.e. the backend is down or the network is gone.
func IsUnreachable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.HTTPStatus == 0
}
