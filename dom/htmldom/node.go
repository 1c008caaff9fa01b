package htmldom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/vcrobe/nojs-include/dom"
)

var (
	_ dom.Node    = (*Node)(nil)
	_ dom.Element = (*Element)(nil)
)

// Node wraps a non-element html.Node.
type Node struct {
	doc *Document
	n   *html.Node
}

// Element wraps an element html.Node.
type Element struct {
	Node
}

// HTML returns the underlying x/net/html node.
func (x *Node) HTML() *html.Node {
	return x.n
}

func (x *Node) Type() dom.NodeType {
	switch x.n.Type {
	case html.ElementNode:
		return dom.ElementNode
	case html.TextNode:
		return dom.TextNode
	case html.CommentNode:
		return dom.CommentNode
	case html.DocumentNode:
		return dom.DocumentNode
	case html.DoctypeNode:
		return dom.DoctypeNode
	}
	return 0
}

func (x *Node) Name() string {
	switch x.n.Type {
	case html.ElementNode:
		return strings.ToLower(x.n.Data)
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	}
	return x.n.Data
}

func (x *Node) TextContent() string {
	return textContent(x.n)
}

func (x *Node) Parent() dom.Element {
	p := x.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return x.doc.element(p)
}

func (x *Node) Clone(deep bool) dom.Node {
	return x.doc.wrap(x.doc.clone(x.n, deep))
}

func (e *Element) ID() string {
	v, _ := getAttr(e.n, "id")
	return v
}

func (e *Element) SetID(id string) {
	e.SetAttr("id", id)
}

func (e *Element) ClassName() string {
	v, _ := getAttr(e.n, "class")
	return v
}

func (e *Element) SetClassName(class string) {
	e.SetAttr("class", class)
}

func (e *Element) Attr(name string) (string, bool) {
	return getAttr(e.n, strings.ToLower(name))
}

func (e *Element) SetAttr(name, value string) {
	name = strings.ToLower(name)
	for i := range e.n.Attr {
		if e.n.Attr[i].Namespace == "" && e.n.Attr[i].Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

func (e *Element) SetTextContent(text string) {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
	if text != "" {
		e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func (e *Element) ChildNodes() []dom.Node {
	var out []dom.Node
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, e.doc.wrap(c))
	}
	return out
}

func (e *Element) AppendChild(child dom.Node) error {
	c, err := unwrap(child)
	if err != nil {
		return err
	}
	if err := e.adopt(c); err != nil {
		return err
	}
	e.n.AppendChild(c)
	e.doc.runScripts(c)
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
	if oc.Parent != e.n {
		return fmt.Errorf("%w: node to replace is not a child of <%s>", ErrHierarchy, e.n.Data)
	}
	if nc == oc {
		return nil
	}
	if err := e.adopt(nc); err != nil {
		return err
	}
	e.n.InsertBefore(nc, oc)
	e.n.RemoveChild(oc)
	e.doc.runScripts(nc)
	return nil
}

func (e *Element) RemoveChild(child dom.Node) error {
	c, err := unwrap(child)
	if err != nil {
		return err
	}
	if c.Parent != e.n {
		return fmt.Errorf("%w: node to remove is not a child of <%s>", ErrHierarchy, e.n.Data)
	}
	e.n.RemoveChild(c)
	return nil
}

func (e *Element) QueryAll(tag string) []dom.Element {
	tag = strings.ToLower(tag)
	var out []dom.Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(n *html.Node) {
			if n.Type == html.ElementNode && n.Data == tag {
				out = append(out, e.doc.element(n))
			}
		})
	}
	return out
}

// adopt detaches c from its current parent so it can be inserted under e.
func (e *Element) adopt(c *html.Node) error {
	for p := e.n; p != nil; p = p.Parent {
		if p == c {
			return fmt.Errorf("%w: cannot insert <%s> into its own subtree", ErrHierarchy, c.Data)
		}
	}
	if c.Type == html.DocumentNode {
		return fmt.Errorf("%w: cannot insert a document node", ErrHierarchy)
	}
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	return nil
}
