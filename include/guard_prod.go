//go:build !dev
// +build !dev

package include

import "fmt"

// guard recovers a panic raised while loading one component and turns it into
// that component's error, so the remaining components still load. DOM
// exceptions from syscall/js arrive this way.
func (l *Loader) guard(name string, err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("panic while loading component %s: %v", name, rec)
	}
}
