package routeapi

import (
	"errors"
	"fmt"
)

// ErrNoRoutes is returned by Upload when the route service answered without a
// routes field.
var ErrNoRoutes = errors.New("no routes received from server")

// FetchError reports a request that did not produce a usable answer: the
// transport failed, the status was not 2xx, or the body could not be decoded.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ServerError is an error message reported by the route service in the "error"
// field of an otherwise well-formed response.
type ServerError struct {
	Op      string
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// IsServerError reports whether err carries a message from the route service.
func IsServerError(err error) (*ServerError, bool) {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr, true
	}
	return nil, false
}
