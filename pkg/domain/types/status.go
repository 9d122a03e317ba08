package types

import "github.com/m-mizutani/goerr/v2"

// Status is the result of a logged interaction
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// AllStatuses returns all valid statuses
func AllStatuses() []Status {
	return []Status{StatusSuccess, StatusFailure}
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	return s == StatusSuccess || s == StatusFailure
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// StatusOf maps a boolean outcome to SUCCESS or FAILURE
func StatusOf(ok bool) Status {
	if ok {
		return StatusSuccess
	}
	return StatusFailure
}

// ParseStatus parses a string into a Status
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", goerr.New("invalid status", goerr.V("status", s))
	}
	return status, nil
}
