package model

// Result is a tagged outcome of an agent call: either Ok carrying a payload
// or Failed carrying a reason. Callers branch on IsOk instead of comparing
// against magic values.
type Result[T any] struct {
	value  T
	reason string
	failed bool
}

// Ok wraps a successful payload
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failed builds a failed result with a human readable reason
func Failed[T any](reason string) Result[T] {
	return Result[T]{reason: reason, failed: true}
}

// IsOk reports whether the result carries a payload
func (r Result[T]) IsOk() bool {
	return !r.failed
}

// Value returns the payload. It is the zero value for failed results.
func (r Result[T]) Value() T {
	return r.value
}

// Reason returns the failure reason, empty for Ok results
func (r Result[T]) Reason() string {
	return r.reason
}
