package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnauthorized matches any *HTTPError carrying a 401 status.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransport matches network failures and timeouts.
	ErrTransport = errors.New("transport error")

	// ErrRefreshFailed matches errors returned after the refresh call failed.
	ErrRefreshFailed = errors.New("token refresh failed")

	ErrNoRefreshToken = errors.New("no refresh token stored")
)

// HTTPError is returned for every non-2xx response.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Message extracts the backend's human readable message from a JSON body.
func (e *HTTPError) Message() string {
	var body struct {
		Message string `json:"message"`
		Title   string `json:"title"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.Title != "":
			return body.Title
		case body.Error != "":
			return body.Error
		}
	}
	text := strings.TrimSpace(string(e.Body))
	if text == "" || strings.HasPrefix(text, "{") || strings.HasPrefix(text, "<") {
		return ""
	}
	return truncate(text, maxMessageBytes)
}

const maxMessageBytes = 200

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// RefreshError carries both the refresh failure and the 401 that triggered it.
type RefreshError struct {
	Cause    error
	Original error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v (original: %v)", e.Cause, e.Original)
}

func (e *RefreshError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.Original != nil {
		errs = append(errs, e.Original)
	}
	return errs
}

func (e *RefreshError) Is(target error) bool {
	return target == ErrRefreshFailed
}
