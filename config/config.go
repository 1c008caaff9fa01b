// Package config loads page configurations from HCL files:
//
//	page        = "index.html"
//	output      = "dist/index.html"
//	root_id     = "components-root"
//	include_dir = "html-includes"
//
//	component "header" {
//	  container_id    = "site-header"
//	  container_class = "sticky"
//	  data_key        = "header"
//	}
//
// Attribute expressions may read the process environment through the env
// object, e.g. container_class = env.HEADER_CLASS.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/vcrobe/nojs-include/include"
)

// Page is a decoded page file.
type Page struct {
	// Path is the file the page was loaded from.
	Path string

	// Page is the host HTML file, relative to the page file's directory.
	Page string

	// Output is where a prerendered page is written, relative to the page
	// file's directory. Empty means stdout.
	Output string

	Include include.Config
}

// Dir returns the directory the page file lives in.
func (p *Page) Dir() string {
	return filepath.Dir(p.Path)
}

// hclPageFile is the top-level structure of a page file for decoding.
type hclPageFile struct {
	Page       *string         `hcl:"page,optional"`
	Output     *string         `hcl:"output,optional"`
	RootID     *string         `hcl:"root_id,optional"`
	IncludeDir *string         `hcl:"include_dir,optional"`
	Components []*hclComponent `hcl:"component,block"`
}

type hclComponent struct {
	Name           string `hcl:"name,label"`
	ContainerID    string `hcl:"container_id"`
	ContainerClass string `hcl:"container_class,optional"`
	DataKey        string `hcl:"data_key,optional"`
	Optional       bool   `hcl:"optional,optional"`
}

// LoadFile reads and decodes the page file at path.
func LoadFile(path string) (*Page, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page file %s: %w", path, err)
	}
	return Parse(src, path, os.Environ())
}

// Parse decodes page file source. filename is used for diagnostics and as
// Page.Path; environ ("KEY=value" pairs) populates the env object.
func Parse(src []byte, filename string, environ []string) (*Page, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse page file %s: %w", filename, diags)
	}

	var parsed hclPageFile
	diags = gohcl.DecodeBody(file.Body, evalContext(environ), &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode page file %s: %w", filename, diags)
	}

	page := &Page{
		Path:   filename,
		Page:   stringOr(parsed.Page, "index.html"),
		Output: stringOr(parsed.Output, ""),
		Include: include.Config{
			RootID:     stringOr(parsed.RootID, include.DefaultRootID),
			IncludeDir: stringOr(parsed.IncludeDir, include.DefaultIncludeDir),
			Components: make([]include.Descriptor, 0, len(parsed.Components)),
		},
	}
	for _, c := range parsed.Components {
		page.Include.Components = append(page.Include.Components, include.Descriptor{
			Name:           c.Name,
			ContainerID:    c.ContainerID,
			ContainerClass: c.ContainerClass,
			DataKey:        c.DataKey,
			Optional:       c.Optional,
		})
	}

	if err := page.Include.Validate(); err != nil {
		return nil, fmt.Errorf("invalid page file %s: %w", filename, err)
	}
	return page, nil
}

func evalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		// Only names usable in a traversal such as env.HOME are exposed.
		if !ok || !hclsyntax.ValidIdentifier(k) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

func stringOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
