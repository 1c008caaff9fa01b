// Package include is a minimal client-side include mechanism. It creates one
// placeholder container per configured component, then fetches each
// component's HTML fragment, hoists its styles into the document head, inserts
// its markup into the placeholder and activates its scripts.
//
// This package has NO build tags. It works against the dom interfaces, so the
// same code drives the live browser page (dom/jsdom) and in-memory documents
// (dom/htmldom).
package include

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	// DefaultRootID is the id of the element that receives the placeholders.
	DefaultRootID = "components-root"

	// DefaultIncludeDir is the directory fragments are fetched from, relative
	// to the page.
	DefaultIncludeDir = "html-includes"

	// ContainerClass is the marker class carried by every placeholder.
	ContainerClass = "component-container"

	// BootstrapAttr marks the host page scripts that start the loader in the
	// browser. Prerendered pages drop them so the components are not loaded
	// a second time.
	BootstrapAttr = "data-nojs-include"
)

// Descriptor names one component to load and the container it goes into.
type Descriptor struct {
	// Name identifies the fragment file: <IncludeDir>/<Name>.html.
	Name string

	// ContainerID is the id of the placeholder to create. It must be unique
	// within a Config.
	ContainerID string

	// ContainerClass is appended to the placeholder's marker class.
	ContainerClass string

	// DataKey is written to the placeholder's data-key attribute. Defaults to Name.
	DataKey string

	// Optional components may have their placeholder removed by the page
	// before loading; that is then not reported.
	Optional bool
}

// Key returns the effective data-key value.
func (d Descriptor) Key() string {
	if d.DataKey != "" {
		return d.DataKey
	}
	return d.Name
}

// Path returns the fragment's location relative to the page.
func (d Descriptor) Path(dir string) string {
	if dir == "" {
		dir = DefaultIncludeDir
	}
	return path.Join(dir, d.Name+".html")
}

// ClassName returns the placeholder's class attribute value.
func (d Descriptor) ClassName() string {
	extra := strings.TrimSpace(d.ContainerClass)
	if extra == "" {
		return ContainerClass
	}
	return ContainerClass + " " + extra
}

// Config is the page configuration: an ordered list of components plus where
// to put them. Order is both placeholder order and load order.
type Config struct {
	RootID     string
	IncludeDir string
	Components []Descriptor
}

// Root returns the configured root id or DefaultRootID.
func (c *Config) Root() string {
	if c.RootID != "" {
		return c.RootID
	}
	return DefaultRootID
}

// Dir returns the configured include directory or DefaultIncludeDir.
func (c *Config) Dir() string {
	if c.IncludeDir != "" {
		return c.IncludeDir
	}
	return DefaultIncludeDir
}

// Validate checks that every component has a name and a container id and
// that container ids are unique. The loader does not call it; config decoders do.
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]int, len(c.Components))
	for i, d := range c.Components {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("component %d: name is required", i))
		}
		if d.ContainerID == "" {
			errs = append(errs, fmt.Errorf("component %d (%s): container id is required", i, d.Name))
			continue
		}
		if prev, dup := seen[d.ContainerID]; dup {
			errs = append(errs, fmt.Errorf("component %d (%s): container id %q already used by component %d",
				i, d.Name, d.ContainerID, prev))
			continue
		}
		seen[d.ContainerID] = i
	}
	return errors.Join(errs...)
}
