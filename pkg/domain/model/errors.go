package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Path errors
var (
	ErrOutsideSandbox = goerr.New("path is outside the sandbox root")
	ErrNotExist       = goerr.New("path does not exist")
	ErrNotRegular     = goerr.New("path is not a regular file")
	ErrNotDirectory   = goerr.New("path is not a directory")
)

// Context keys for error values
const (
	PathKey       = "path"
	RootKey       = "root"
	StatusCodeKey = "status_code"
	FieldKey      = "field"
)

// TransportError is a network level failure reaching the LLM gateway.
// Timeouts are reported as TransportError as well.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-success response from the LLM gateway
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// PathError reports a sandbox violation or a missing file. It is always
// returned before any I/O is attempted on the offending path.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ValidationError rejects a malformed log entry
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}
