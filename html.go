package treewire

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidTags are the self-closing element types that cannot carry injected
// inner content.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// TransformHTML parses a markup string and rewrites it into a sequence of
// nodes, upgrading elements claimed by registered patterns into typed
// components. Empty or whitespace-only input yields an empty sequence.
//
// Pattern handler failures are contained per element: the failing element
// degrades to an opaque leaf and its siblings transform normally. One bad
// handler must not break an entire page render.
func (t *Transformer) TransformHTML(input string) ([]any, error) {
	if strings.TrimSpace(input) == "" {
		return []any{}, nil
	}

	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	frag, err := html.ParseFragment(strings.NewReader(input), ctx)
	if err != nil {
		return nil, fmt.Errorf("treewire: parse markup: %w", err)
	}

	nodes := make([]any, 0, len(frag))
	for i, n := range frag {
		switch n.Type {
		case html.ElementNode:
			nodes = append(nodes, t.transformElement(n, strconv.Itoa(i)))
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				nodes = append(nodes, text)
			}
		}
	}
	return nodes, nil
}

// transformElement converts one markup element. The first matching pattern
// handler wins and its output flows through the same reconstruction
// machinery as the JSON path. Without a direct match, an element whose
// subtree contains transformable descendants is rebuilt generically around
// its recursively transformed children; otherwise it is an opaque leaf.
func (t *Transformer) transformElement(el *html.Node, key string) any {
	if handler := t.Patterns().MatchFirst(el); handler != nil {
		out, err := callPatternHandler(handler, el)
		if err == nil {
			node, derr := t.deserializeValue(out, 0)
			if derr == nil {
				return reapplyKey(node, key)
			}
			err = derr
		}
		// Contained: the document transform survives a broken handler.
		t.logger.Warn("pattern handler failed, degrading to opaque leaf",
			"element", el.Data, "key", key, "error", err)
		return t.opaqueLeaf(el, key)
	}

	if t.hasTransformableDescendant(el) {
		return t.rebuildElement(el, key)
	}

	return t.opaqueLeaf(el, key)
}

// callPatternHandler invokes a handler with panic containment.
func callPatternHandler(handler PatternHandler, el *html.Node) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrPatternHandler, r)
		}
	}()
	out, err = handler(el)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrPatternHandler, err)
	}
	return out, err
}

// hasTransformableDescendant reports whether any element strictly below el
// matches a registered pattern.
func (t *Transformer) hasTransformableDescendant(el *html.Node) bool {
	patterns := t.Patterns()
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && patterns.matchesAny(c) {
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(el)
}

// rebuildElement preserves the element structurally - tag, class, id -
// with each child recursively transformed.
func (t *Transformer) rebuildElement(el *html.Node, key string) *Element {
	var children []any
	i := 0
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			children = append(children, t.transformElement(c, key+"."+strconv.Itoa(i)))
			i++
		case html.TextNode:
			if text := strings.TrimSpace(c.Data); text != "" {
				children = append(children, text)
			}
		}
	}
	return NewElement(el.Data, markupProps(el), children...).WithKey(key)
}

// opaqueLeaf copies the element's tag, class and id, and injects its inner
// markup through the safe-HTML leaf. Void tag types carry no inner content
// and come back as bare elements.
func (t *Transformer) opaqueLeaf(el *html.Node, key string) *Element {
	props := markupProps(el)
	if voidTags[el.Data] {
		return NewElement(el.Data, props).WithKey(key)
	}
	inner := innerHTML(el)
	if inner == "" {
		return NewElement(el.Data, props).WithKey(key)
	}
	return NewElement(el.Data, props, t.safe.element(inner)).WithKey(key)
}

// markupProps extracts the structural attributes preserved across a
// generic rebuild.
func markupProps(el *html.Node) map[string]any {
	props := make(map[string]any)
	for _, attr := range el.Attr {
		switch attr.Key {
		case "class", "id":
			props[attr.Key] = attr.Val
		}
	}
	return props
}

// innerHTML renders the element's children back to markup.
func innerHTML(el *html.Node) string {
	var buf bytes.Buffer
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return strings.TrimSpace(buf.String())
}

// Attr returns the value of a named attribute on a markup element, for use
// inside pattern handlers.
func Attr(el *html.Node, name string) string {
	for _, attr := range el.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// InnerText collects the concatenated text content of a markup element,
// for use inside pattern handlers.
func InnerText(el *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(el)
	return strings.TrimSpace(b.String())
}

// InnerMarkup returns the element's inner HTML, for handlers that forward
// raw content into safe-HTML payloads.
func InnerMarkup(el *html.Node) string {
	return innerHTML(el)
}
