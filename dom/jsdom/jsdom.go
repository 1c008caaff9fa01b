//go:build js || wasm
// +build js wasm

// Package jsdom implements dom.Document on top of the browser DOM via
// syscall/js. DOM exceptions surface as js.Error panics, exactly as they do
// for any other syscall/js call; callers that need isolation recover them.
package jsdom

import (
	"errors"
	"strings"
	"syscall/js"

	"github.com/vcrobe/nojs-include/dom"
)

// Compile-time assertion to ensure Document implements the dom.Document interface.
var _ dom.Document = (*Document)(nil)

// ErrForeignNode is returned when a node from another dom implementation is
// passed to a jsdom element.
var ErrForeignNode = errors.New("jsdom: node does not wrap a js.Value")

// Document wraps the page's global document object.
type Document struct {
	v js.Value
}

// Global returns the window.document of the running page.
func Global() (*Document, bool) {
	doc := js.Global().Get("document")
	if !doc.Truthy() {
		return nil, false
	}
	return &Document{v: doc}, true
}

// Value returns the underlying js.Value.
func (d *Document) Value() js.Value {
	return d.v
}

// ReadyState returns document.readyState ("loading", "interactive" or "complete").
func (d *Document) ReadyState() string {
	return d.v.Get("readyState").String()
}

// ElementByID implements dom.Document.
func (d *Document) ElementByID(id string) (dom.Element, bool) {
	el := d.v.Call("getElementById", id)
	if !el.Truthy() {
		return nil, false
	}
	return &Element{Node{v: el}}, true
}

// Head implements dom.Document.
func (d *Document) Head() dom.Element {
	head := d.v.Get("head")
	if !head.Truthy() {
		return nil
	}
	return &Element{Node{v: head}}
}

// CreateElement implements dom.Document.
func (d *Document) CreateElement(tag string) dom.Element {
	return &Element{Node{v: d.v.Call("createElement", tag)}}
}

// ParseHTML implements dom.Document. DOMParser documents have scripting
// disabled, so nothing in the result executes.
func (d *Document) ParseHTML(markup string) (*dom.Fragment, error) {
	parser := js.Global().Get("DOMParser")
	if !parser.Truthy() {
		return nil, errors.New("DOMParser is not available")
	}
	parsed := parser.New().Call("parseFromString", markup, "text/html")
	root := parsed.Get("documentElement")
	body := parsed.Get("body")
	if !root.Truthy() || !body.Truthy() {
		return nil, errors.New("parsed fragment has no body")
	}
	return &dom.Fragment{Root: &Element{Node{v: root}}, Body: &Element{Node{v: body}}}, nil
}

// Node wraps any DOM node.
type Node struct {
	v js.Value
}

// Element wraps a DOM element.
type Element struct {
	Node
}

// Value returns the underlying js.Value.
func (n *Node) Value() js.Value {
	return n.v
}

func (n *Node) Type() dom.NodeType {
	return dom.NodeType(n.v.Get("nodeType").Int())
}

func (n *Node) Name() string {
	return strings.ToLower(n.v.Get("nodeName").String())
}

func (n *Node) TextContent() string {
	tc := n.v.Get("textContent")
	if tc.IsNull() || tc.IsUndefined() {
		return ""
	}
	return tc.String()
}

func (n *Node) Parent() dom.Element {
	p := n.v.Get("parentElement")
	if !p.Truthy() {
		return nil
	}
	return &Element{Node{v: p}}
}

func (n *Node) Clone(deep bool) dom.Node {
	return wrap(n.v.Call("cloneNode", deep))
}

func (e *Element) ID() string {
	return e.v.Get("id").String()
}

func (e *Element) SetID(id string) {
	e.v.Set("id", id)
}

func (e *Element) ClassName() string {
	return e.v.Get("className").String()
}

func (e *Element) SetClassName(class string) {
	e.v.Set("className", class)
}

func (e *Element) Attr(name string) (string, bool) {
	if !e.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return e.v.Call("getAttribute", name).String(), true
}

func (e *Element) SetAttr(name, value string) {
	e.v.Call("setAttribute", name, value)
}

func (e *Element) SetTextContent(text string) {
	e.v.Set("textContent", text)
}

func (e *Element) ChildNodes() []dom.Node {
	list := e.v.Get("childNodes")
	out := make([]dom.Node, 0, list.Length())
	for i := 0; i < list.Length(); i++ {
		out = append(out, wrap(list.Index(i)))
	}
	return out
}

func (e *Element) AppendChild(child dom.Node) error {
	c, err := unwrap(child)
	if err != nil {
		return err
	}
	e.v.Call("appendChild", c)
	return nil
}

func (e *Element) ReplaceChild(newChild, oldChild dom.Node) error {
	nc, err := unwrap(newChild)
	if err != nil {
		return err
	}
	oc, err := unwrap(oldChild)
	if err != nil {
		return err
	}
	e.v.Call("replaceChild", nc, oc)
	return nil
}

func (e *Element) RemoveChild(child dom.Node) error {
	c, err := unwrap(child)
	if err != nil {
		return err
	}
	e.v.Call("removeChild", c)
	return nil
}

func (e *Element) QueryAll(tag string) []dom.Element {
	// querySelectorAll returns a static NodeList, which is the snapshot we want.
	list := e.v.Call("querySelectorAll", tag)
	out := make([]dom.Element, 0, list.Length())
	for i := 0; i < list.Length(); i++ {
		out = append(out, &Element{Node{v: list.Index(i)}})
	}
	return out
}

func wrap(v js.Value) dom.Node {
	if v.Get("nodeType").Int() == int(dom.ElementNode) {
		return &Element{Node{v: v}}
	}
	return &Node{v: v}
}

func unwrap(x dom.Node) (js.Value, error) {
	switch n := x.(type) {
	case *Element:
		return n.v, nil
	case *Node:
		return n.v, nil
	}
	return js.Undefined(), ErrForeignNode
}
