// Package htmldom implements dom.Document over golang.org/x/net/html trees.
//
// It is the in-memory counterpart of dom/jsdom: the include loader runs
// against it in native tests and in the static prerender tool. Script
// execution is modelled the way browsers do it: parsed scripts are already
// started and so are their clones. Only a script made with CreateElement (or
// cloned from one that has not run yet) runs, once, when it is connected to
// the document. Documents report executions through the OnScript hook.
package htmldom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vcrobe/nojs-include/dom"
)

// Compile-time assertion to ensure Document implements the dom.Document interface.
var _ dom.Document = (*Document)(nil)

// ErrForeignNode is returned when a node from another dom implementation is
// passed to an htmldom element.
var ErrForeignNode = errors.New("htmldom: node does not belong to an htmldom document")

// ErrHierarchy is returned for insertions that would break the tree, such as
// appending a node into its own subtree.
var ErrHierarchy = errors.New("htmldom: hierarchy request error")

// Script describes a script element at the moment it executed.
type Script struct {
	Src  string
	Text string
}

// Document is an in-memory HTML document.
type Document struct {
	root *html.Node
	// pending holds created scripts that have not run yet.
	pending map[*html.Node]bool
	ran     []Script

	// OnScript, if set, is called each time a script executes.
	OnScript func(Script)
}

// New returns an empty document with html, head and body elements.
func New() *Document {
	d, err := Parse(strings.NewReader(""))
	if err != nil {
		// html.Parse only fails on reader errors.
		panic(err)
	}
	return d
}

// Parse reads a complete HTML page. Scripts already in the page count as
// started and do not run again.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{
		root:    root,
		pending: make(map[*html.Node]bool),
	}, nil
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// Executed returns the scripts that ran so far, in execution order.
func (d *Document) Executed() []Script {
	out := make([]Script, len(d.ran))
	copy(out, d.ran)
	return out
}

// Body returns the document body.
func (d *Document) Body() dom.Element {
	if n := findElement(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Body }); n != nil {
		return d.element(n)
	}
	return nil
}

// ElementByID implements dom.Document.
func (d *Document) ElementByID(id string) (dom.Element, bool) {
	if id == "" {
		return nil, false
	}
	n := findElement(d.root, func(n *html.Node) bool {
		v, ok := getAttr(n, "id")
		return ok && v == id
	})
	if n == nil {
		return nil, false
	}
	return d.element(n), true
}

// Head implements dom.Document.
func (d *Document) Head() dom.Element {
	if n := findElement(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Head }); n != nil {
		return d.element(n)
	}
	return nil
}

// CreateElement implements dom.Document.
func (d *Document) CreateElement(tag string) dom.Element {
	tag = strings.ToLower(tag)
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if isScript(n) {
		d.pending[n] = true
	}
	return d.element(n)
}

// ParseHTML implements dom.Document.
func (d *Document) ParseHTML(markup string) (*dom.Fragment, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}

	htmlEl := findElement(root, func(n *html.Node) bool { return n.DataAtom == atom.Html })
	body := findElement(root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if htmlEl == nil || body == nil {
		return nil, errors.New("parsed fragment has no body")
	}
	return &dom.Fragment{Root: d.element(htmlEl), Body: d.element(body)}, nil
}

// InnerHTML renders the children of el.
func InnerHTML(el dom.Element) string {
	e, ok := el.(*Element)
	if !ok {
		return ""
	}
	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

func (d *Document) element(n *html.Node) *Element {
	return &Element{Node: Node{doc: d, n: n}}
}

func (d *Document) wrap(n *html.Node) dom.Node {
	if n.Type == html.ElementNode {
		return d.element(n)
	}
	return &Node{doc: d, n: n}
}

func (d *Document) connected(n *html.Node) bool {
	for n.Parent != nil {
		n = n.Parent
	}
	return n == d.root
}

// runScripts executes every pending script in the subtree of n, in
// tree order, provided the subtree is connected to the document.
func (d *Document) runScripts(n *html.Node) {
	if !d.connected(n) {
		return
	}
	walk(n, func(c *html.Node) {
		if !d.pending[c] {
			return
		}
		delete(d.pending, c)
		src, _ := getAttr(c, "src")
		s := Script{Src: src}
		if src == "" {
			s.Text = textContent(c)
		}
		d.ran = append(d.ran, s)
		if d.OnScript != nil {
			d.OnScript(s)
		}
	})
}

func (d *Document) clone(n *html.Node, deep bool) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	if d.pending[n] {
		d.pending[c] = true
	}
	if deep {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			c.AppendChild(d.clone(child, true))
		}
	}
	return c
}

func unwrap(x dom.Node) (*html.Node, error) {
	switch v := x.(type) {
	case *Element:
		return v.n, nil
	case *Node:
		return v.n, nil
	}
	return nil, ErrForeignNode
}

func isScript(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Script
}

// walk visits n and its descendants in tree order.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	switch n.Type {
	case html.TextNode, html.CommentNode:
		return n.Data
	case html.DoctypeNode:
		return ""
	}
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}
