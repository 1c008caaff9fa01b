package include

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMissing means no page configuration was supplied.
	ErrConfigMissing = errors.New("page configuration is not defined")

	// ErrRootMissing means the element that should hold the placeholders
	// does not exist.
	ErrRootMissing = errors.New("components root container not found")

	// ErrPlaceholderMissing means a fragment was retrieved but its container
	// was no longer in the document.
	ErrPlaceholderMissing = errors.New("component container not found")
)

// FetchError is a transport-level failure to retrieve a fragment.
type FetchError struct {
	Name string
	Path string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load component %s from %s: %v", e.Name, e.Path, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError is a fragment response with a non-success status.
type StatusError struct {
	Name       string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to load component %s: %s returned status %d", e.Name, e.Path, e.StatusCode)
}
