package include

import (
	"fmt"

	"github.com/vcrobe/nojs-include/dom"
)

// HoistStyles copies the text of every style element under root into new
// style elements appended to the document head, in document order.
// Attributes are not carried over and nothing is deduplicated.
func HoistStyles(doc dom.Document, root dom.Element) (int, error) {
	head := doc.Head()
	if head == nil {
		return 0, fmt.Errorf("document has no head")
	}

	n := 0
	for _, style := range root.QueryAll("style") {
		hoisted := doc.CreateElement("style")
		hoisted.SetTextContent(style.TextContent())
		if err := head.AppendChild(hoisted); err != nil {
			return n, fmt.Errorf("failed to append style to head: %w", err)
		}
		n++
	}
	return n, nil
}

// Transplant appends deep clones of the direct children of body to container,
// skipping style elements. It returns the number of nodes inserted.
func Transplant(container, body dom.Element) (int, error) {
	n := 0
	for _, child := range body.ChildNodes() {
		if child.Type() == dom.ElementNode && child.Name() == "style" {
			continue
		}
		if err := container.AppendChild(child.Clone(true)); err != nil {
			return n, fmt.Errorf("failed to insert <%s> into #%s: %w", child.Name(), container.ID(), err)
		}
		n++
	}
	return n, nil
}

// ActivateScripts makes the scripts under root run. Scripts inserted by
// cloning or parsing never execute, so each one is replaced in place by a
// freshly created script element carrying the same src attribute or, without
// one, the same inline text. Each script runs exactly once, in document order.
// It returns the number of scripts activated.
func ActivateScripts(doc dom.Document, root dom.Element) (int, error) {
	n := 0
	for _, old := range root.QueryAll("script") {
		fresh := doc.CreateElement("script")
		if src, ok := old.Attr("src"); ok && src != "" {
			fresh.SetAttr("src", src)
		} else {
			fresh.SetTextContent(old.TextContent())
		}

		parent := old.Parent()
		if parent == nil {
			return n, fmt.Errorf("script %d under #%s has no parent", n, root.ID())
		}
		if err := parent.ReplaceChild(fresh, old); err != nil {
			return n, fmt.Errorf("failed to activate script %d under #%s: %w", n, root.ID(), err)
		}
		n++
	}
	return n, nil
}
