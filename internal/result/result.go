// Package result normalizes every service call into a tagged success or
// failure value so callers never see raw transport errors.
package result

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"semaphore/dashboard/internal/apiclient"
)

const (
	CodeUnknown    = "UNKNOWN_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeTransport  = "TRANSPORT_ERROR"

	unexpectedMessage = "An unexpected error occurred"
)

type Error struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Coded errors choose their own envelope code and details.
type Coded interface {
	error
	ErrorCode() string
	ErrorDetails() any
}

type Result[T any] struct {
	value T
	err   *Error
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail wraps err into a failed result. A nil err still yields a failure.
func Fail[T any](err error) Result[T] {
	return Result[T]{err: FromError(err)}
}

func (r Result[T]) Success() bool {
	return r.err == nil
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() *Error {
	return r.err
}

func (r Result[T]) Get() (T, *Error) {
	return r.value, r.err
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.err != nil {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   *Error `json:"error"`
		}{false, r.err})
	}
	return json.Marshal(struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}{true, r.value})
}

// Match forces both branches to be handled.
func Match[T, R any](r Result[T], ok func(T) R, fail func(*Error) R) R {
	if r.err != nil {
		return fail(r.err)
	}
	return ok(r.value)
}

// Map transforms a successful value and passes failures through.
func Map[T, R any](r Result[T], fn func(T) R) Result[R] {
	if r.err != nil {
		return Result[R]{err: r.err}
	}
	return Ok(fn(r.value))
}

// Execute runs call and converts its error, or a panic, into a failed result.
func Execute[T any](ctx context.Context, call func(context.Context) (T, error)) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = Result[T]{err: &Error{Message: fmt.Sprint(p), Code: CodeUnknown}}
		}
	}()
	value, err := call(ctx)
	if err != nil {
		return Fail[T](err)
	}
	return Ok(value)
}

func FromError(err error) *Error {
	if err == nil {
		return &Error{Message: unexpectedMessage, Code: CodeUnknown}
	}

	var resErr *Error
	if errors.As(err, &resErr) {
		return resErr
	}

	var coded Coded
	if errors.As(err, &coded) {
		out := &Error{Message: coded.Error(), Code: coded.ErrorCode(), cause: err}
		if details := coded.ErrorDetails(); details != nil {
			if raw, mErr := json.Marshal(details); mErr == nil {
				out.Details = raw
			}
		}
		return out
	}

	var httpErr *apiclient.HTTPError
	if errors.As(err, &httpErr) {
		out := &Error{
			Message: httpErr.Message(),
			Code:    strconv.Itoa(httpErr.StatusCode),
			cause:   err,
		}
		if out.Message == "" {
			out.Message = err.Error()
		}
		if json.Valid(httpErr.Body) {
			out.Details = json.RawMessage(httpErr.Body)
		}
		return out
	}

	if errors.Is(err, apiclient.ErrTransport) {
		return &Error{Message: err.Error(), Code: CodeTransport, cause: err}
	}
	return &Error{Message: err.Error(), Code: CodeUnknown, cause: err}
}
