package asana

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when Asana answers 404.
var ErrNotFound = errors.New("asana: resource not found")

// APIError is a non-2xx answer from the Asana API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("asana API %s %s error %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 answers.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
