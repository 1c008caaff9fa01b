//go:build dev
// +build dev

package include

// guard lets panics propagate in development mode to aid debugging and fast failure.
func (l *Loader) guard(name string, err *error) {}
