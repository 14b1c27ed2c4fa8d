package proxy

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrRouteNotFound is the cause of the error a Router returns when no route
// matches and no catch all handler is set.
var ErrRouteNotFound = errors.New("route not found")

// HTTPStatusError is returned when the remote end answers with a status
// outside of the 2xx range.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http error, status: %d", e.StatusCode)
}

// FunctionError is returned when an invoked lambda function reports an error
// instead of a result.
type FunctionError struct {
	Function string
	Type     string
	Payload  []byte
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function %s failed (%s): %s", e.Function, e.Type, e.Payload)
}

// StatusCode returns the http status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}

	return 0, false
}

// IsRouteNotFound returns true if err was caused by no route matching.
func IsRouteNotFound(err error) bool {
	return errors.Cause(err) == ErrRouteNotFound
}
