package restapi

import (
	"context"
	"errors"
	"fmt"
)

var ErrUpstream = errors.New("restaurant api error")

// StatusError is a non-2xx answer from the restaurant API.
type StatusError struct {
	Code int
	Path string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("restaurant api: %s: status %d: %s", e.Path, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}

// countsAgainstUpstream is false for client errors, which say nothing about upstream health.
func countsAgainstUpstream(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return true
}
