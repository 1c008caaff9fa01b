package include

import (
	"fmt"

	"github.com/vcrobe/nojs-include/dom"
)

// Provision creates one placeholder div per component under the root element,
// in configuration order. If the root cannot be found it returns
// ErrRootMissing and creates nothing.
func Provision(doc dom.Document, cfg *Config) ([]dom.Element, error) {
	if cfg == nil {
		return nil, ErrConfigMissing
	}
	root, ok := doc.ElementByID(cfg.Root())
	if !ok {
		return nil, fmt.Errorf("%w: #%s", ErrRootMissing, cfg.Root())
	}

	containers := make([]dom.Element, 0, len(cfg.Components))
	for _, d := range cfg.Components {
		container := doc.CreateElement("div")
		container.SetID(d.ContainerID)
		container.SetClassName(d.ClassName())
		// Component scripts read data-key to find their own container.
		container.SetAttr("data-key", d.Key())
		if err := root.AppendChild(container); err != nil {
			return containers, fmt.Errorf("failed to append container #%s: %w", d.ContainerID, err)
		}
		containers = append(containers, container)
	}
	return containers, nil
}

// RemoveBootstrap removes every script under root that carries BootstrapAttr
// and returns how many were removed.
func RemoveBootstrap(root dom.Element) (int, error) {
	n := 0
	for _, script := range root.QueryAll("script") {
		if _, ok := script.Attr(BootstrapAttr); !ok {
			continue
		}
		parent := script.Parent()
		if parent == nil {
			continue
		}
		if err := parent.RemoveChild(script); err != nil {
			return n, fmt.Errorf("failed to remove bootstrap script: %w", err)
		}
		n++
	}
	return n, nil
}
