// Package result provides the success/failure value threaded through every
// build pipeline stage. An operation over a batch of independent items (posts,
// pages, output files) reports one Result per item; coordinating stages fold
// those into a single Result with Aggregate or AggregateValues, and the final
// Result of a run is rendered for the operator by internal/report.
package result

// Unit is the payload of a valueless Result.
type Unit = struct{}

// Status is the outcome of an operation that produces no value.
type Status = Result[Unit]

// Result represents an operation that either succeeded, optionally carrying a
// value of type T, or failed with a Detail. The zero value is a failure with
// no detail; use the constructors.
type Result[T any] struct {
	value  T
	detail Detail
	isOK   bool
}

// Ok creates a successful Result carrying value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, isOK: true}
}

// Done creates a bare success marker.
func Done() Status {
	return Ok(Unit{})
}

// Err creates a failed Result wrapping detail.
func Err[T any](detail Detail) Result[T] {
	return Result[T]{detail: detail}
}

// Failf creates a valueless failure with a formatted message.
func Failf(format string, args ...any) Status {
	return Err[Unit](Msgf(format, args...))
}

// FailAt creates a valueless failure attributed to a source location.
// line 0 means the line is unknown.
func FailAt(path string, line int, text string) Status {
	return Err[Unit](&Located{Path: path, Line: line, Text: text})
}

// FailFrom creates a valueless located failure from an I/O error, preserving
// the platform error code when one is available.
func FailFrom(path string, err error) Status {
	return Err[Unit](LocatedFrom(path, err))
}

// FailCode creates a valueless failure carrying a platform error code tied to
// a source location. The code is resolved to a message at render time.
func FailCode(path string, line, code int) Status {
	return Err[Unit](&Located{Path: path, Line: line, Code: code})
}

// IsOK reports whether the Result represents success.
func (r Result[T]) IsOK() bool {
	return r.isOK
}

// IsErr reports whether the Result represents failure.
func (r Result[T]) IsErr() bool {
	return !r.isOK
}

// Unwrap returns the carried value. It panics on a failed Result; callers
// must check IsOK first or use UnwrapOr.
func (r Result[T]) Unwrap() T {
	if !r.isOK {
		panic("result: Unwrap on failed Result: " + r.detail.Error())
	}
	return r.value
}

// UnwrapOr returns the carried value, or fallback if the Result failed.
func (r Result[T]) UnwrapOr(fallback T) T {
	if r.isOK {
		return r.value
	}
	return fallback
}

// Detail returns the failure detail, or nil for a successful Result.
func (r Result[T]) Detail() Detail {
	if r.isOK {
		return nil
	}
	return r.detail
}

// Status discards the carried value, keeping only the outcome. It lets a
// value-carrying Result feed APIs that only care about pass/fail.
func (r Result[T]) Status() Status {
	if r.isOK {
		return Done()
	}
	return Err[Unit](r.detail)
}

// Err bridges to the plain Go error convention: nil on success, the Detail
// otherwise.
func (r Result[T]) Err() error {
	if r.isOK {
		return nil
	}
	return r.detail
}

// Map transforms a successful Result[T] into Result[U]. A failure passes
// through unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.isOK {
		return Ok(fn(r.value))
	}
	return Err[U](r.detail)
}

// FromError converts a plain Go error into a Status: nil becomes Done, any
// other error becomes a flat message failure.
func FromError(err error) Status {
	if err == nil {
		return Done()
	}
	if d, ok := err.(Detail); ok {
		return Err[Unit](d)
	}
	return Failf("%v", err)
}
