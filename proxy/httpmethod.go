package proxy

import "fmt"

// HttpMethod is an enum of the standard Http Methods.
type HttpMethod int

const (
	GET HttpMethod = iota
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

var httpMethodNames = [...]string{
	GET:     "GET",
	HEAD:    "HEAD",
	POST:    "POST",
	PUT:     "PUT",
	DELETE:  "DELETE",
	CONNECT: "CONNECT",
	OPTIONS: "OPTIONS",
	TRACE:   "TRACE",
	PATCH:   "PATCH",
}

// String returns the method name as it appears on the wire.
func (m HttpMethod) String() string {
	if m < 0 || int(m) >= len(httpMethodNames) {
		return fmt.Sprintf("HttpMethod(%d)", int(m))
	}

	return httpMethodNames[m]
}
