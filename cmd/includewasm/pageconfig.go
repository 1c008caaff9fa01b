package main

import (
	"encoding/json"
	"fmt"

	"github.com/vcrobe/nojs-include/include"
)

// pageConfig mirrors the object a page passes to nojsInclude.init.
type pageConfig struct {
	RootID     string `json:"rootId"`
	IncludeDir string `json:"includeDir"`
	Components []struct {
		Name           string `json:"name"`
		ContainerID    string `json:"containerId"`
		ContainerClass string `json:"containerClass"`
		DataKey        string `json:"dataKey"`
		Optional       bool   `json:"optional"`
	} `json:"components"`
}

// decodeConfig converts the JSON form of a page config. "null" and the empty
// string (JSON.stringify of undefined) yield include.ErrConfigMissing.
func decodeConfig(raw string) (*include.Config, error) {
	if raw == "" || raw == "null" {
		return nil, include.ErrConfigMissing
	}
	var pc pageConfig
	if err := json.Unmarshal([]byte(raw), &pc); err != nil {
		return nil, fmt.Errorf("invalid page config: %w", err)
	}

	cfg := &include.Config{RootID: pc.RootID, IncludeDir: pc.IncludeDir}
	for _, c := range pc.Components {
		cfg.Components = append(cfg.Components, include.Descriptor{
			Name:           c.Name,
			ContainerID:    c.ContainerID,
			ContainerClass: c.ContainerClass,
			DataKey:        c.DataKey,
			Optional:       c.Optional,
		})
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid page config: %w", err)
	}
	return cfg, nil
}

// summary is the value the init Promise resolves to.
func summary(report *include.Report) map[string]any {
	failed := len(report.Failed())
	return map[string]any{
		"containers": report.Containers,
		"loaded":     len(report.Results) - failed,
		"failed":     failed,
	}
}
