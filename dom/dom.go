// Package dom defines the minimal document contract the include loader works
// against. This package has NO build tags: the browser implementation lives in
// dom/jsdom (js/wasm only) and the in-memory one in dom/htmldom, so the loader
// compiles and runs identically in WASM and in native tests.
package dom

// NodeType mirrors the DOM nodeType constants.
type NodeType int

const (
	ElementNode  NodeType = 1
	TextNode     NodeType = 3
	CommentNode  NodeType = 8
	DocumentNode NodeType = 9
	DoctypeNode  NodeType = 10
)

// Node is any node of a document tree.
type Node interface {
	// Type reports the kind of node.
	Type() NodeType

	// Name returns the lower-case tag name for elements and "#text",
	// "#comment" and so on for other nodes.
	Name() string

	// TextContent returns the concatenated text of the node and its descendants.
	TextContent() string

	// Parent returns the parent element, or nil if the node is detached or
	// its parent is the document itself.
	Parent() Element

	// Clone copies the node. A deep clone copies the whole subtree.
	// Clones are detached and keep the "already started" state of scripts,
	// so a cloned script never executes on insertion.
	Clone(deep bool) Node
}

// Element is a node with a tag, attributes and children.
type Element interface {
	Node

	ID() string
	SetID(id string)
	ClassName() string
	SetClassName(class string)

	// Attr returns the attribute value and whether it is present.
	Attr(name string) (string, bool)
	SetAttr(name, value string)

	// SetTextContent replaces all children with a single text node.
	SetTextContent(text string)

	// ChildNodes returns a snapshot of the direct children, in order.
	ChildNodes() []Node

	// AppendChild inserts child as the last child. A node already in a tree
	// is moved.
	AppendChild(child Node) error

	// ReplaceChild swaps oldChild, which must be a direct child, for newChild.
	ReplaceChild(newChild, oldChild Node) error

	// RemoveChild detaches child, which must be a direct child.
	RemoveChild(child Node) error

	// QueryAll returns a snapshot of all descendant elements with the given
	// tag name, in document order. The element itself is not included.
	QueryAll(tag string) []Element
}

// Document is the live page the loader mutates.
type Document interface {
	// ElementByID finds an element anywhere in the document.
	ElementByID(id string) (Element, bool)

	// Head returns the document head.
	Head() Element

	// CreateElement creates a detached element owned by this document.
	// Script elements created this way execute when they are first connected
	// to the document.
	CreateElement(tag string) Element

	// ParseHTML parses markup as a complete, separate HTML document.
	// Scripts in the result never execute.
	ParseHTML(markup string) (*Fragment, error)
}

// Fragment is a detached document parsed from fragment markup. Leading
// style and script elements end up in its head, the rest in its body, the
// same way a browser parses a standalone page.
type Fragment struct {
	// Root is the document element (<html>).
	Root Element

	// Body is the <body> element.
	Body Element
}
