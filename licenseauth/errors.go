package licenseauth

import (
	"errors"
	"fmt"
)

var ErrNoIPv4Address = errors.New("no IPv4 address found")

// HostResolutionError reports that the local IPv4 address could not be
// determined. No request has been sent when it is returned.
type HostResolutionError struct {
	Err error
}

func (e *HostResolutionError) Error() string {
	return fmt.Sprintf("cannot determine local IPv4 address: %v", e.Err)
}

func (e *HostResolutionError) Unwrap() error {
	return e.Err
}

// NetworkError wraps a failure of the HTTP exchange itself: dial, TLS,
// I/O, timeout or a non-2xx status.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("license server request to %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError is the cause of a NetworkError when the server answered with
// a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// ResponseFormatError reports a response body that is not JSON or that
// lacks a boolean "valid" field.
type ResponseFormatError struct {
	Body string
	Err  error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("malformed license response: %v", e.Err)
}

func (e *ResponseFormatError) Unwrap() error {
	return e.Err
}

func IsHostResolution(err error) bool {
	var h *HostResolutionError
	return errors.As(err, &h)
}

func IsNetwork(err error) bool {
	var n *NetworkError
	return errors.As(err, &n)
}

func IsResponseFormat(err error) bool {
	var r *ResponseFormatError
	return errors.As(err, &r)
}
