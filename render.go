package treewire

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// ToTempl wraps a reconstructed node tree as a templ component, the
// reverse direction of TransformHTML. Components that implement Renderer
// produce their own output; plain-tag elements render structurally with
// escaped text and attributes; the safe-HTML leaf renders sanitized.
// Components without a Renderer, and element types that are not markup
// tags, render their children only.
func (t *Transformer) ToTempl(node any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.renderNode(ctx, w, node)
	})
}

// Render writes the HTML for a node tree.
func (t *Transformer) Render(ctx context.Context, w io.Writer, node any) error {
	return t.renderNode(ctx, w, node)
}

// RenderString renders a node tree to an HTML string.
func (t *Transformer) RenderString(node any) (string, error) {
	var b strings.Builder
	if err := t.renderNode(context.Background(), &b, node); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (t *Transformer) renderNode(ctx context.Context, w io.Writer, node any) error {
	switch n := node.(type) {
	case nil:
		return nil
	case []any:
		for _, child := range n {
			if err := t.renderNode(ctx, w, child); err != nil {
				return err
			}
		}
		return nil
	case *Element:
		if n == nil {
			return nil
		}
		return t.renderElement(ctx, w, n)
	case string:
		_, err := io.WriteString(w, html.EscapeString(n))
		return err
	case map[string]any:
		// Plain data has no visual form.
		return nil
	}
	if isPrimitive(node) {
		_, err := fmt.Fprint(w, node)
		return err
	}
	return nil
}

func (t *Transformer) renderElement(ctx context.Context, w io.Writer, el *Element) error {
	if comp, ok := el.Type.(Component); ok {
		if r, ok := comp.(Renderer); ok {
			return r.Render(ctx, el.Props).Render(ctx, w)
		}
		return t.renderNode(ctx, w, el.Children())
	}

	tag, ok := el.Type.(string)
	if !ok || !isMarkupTag(tag) {
		return t.renderNode(ctx, w, el.Children())
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	for _, kv := range attrPairs(el.Props) {
		if _, err := fmt.Fprintf(w, ` %s="%s"`, kv[0], html.EscapeString(kv[1])); err != nil {
			return err
		}
	}
	if voidTags[tag] {
		_, err := io.WriteString(w, "/>")
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if err := t.renderNode(ctx, w, el.Children()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</"+tag+">")
	return err
}

// attrPairs flattens props into renderable attributes, sorted for
// deterministic output. Children and non-scalar values are skipped.
func attrPairs(props map[string]any) [][2]string {
	if len(props) == 0 {
		return nil
	}
	pairs := make([][2]string, 0, len(props))
	for k, v := range props {
		if k == ChildrenProp || v == nil || !isPrimitive(v) {
			continue
		}
		pairs = append(pairs, [2]string{k, fmt.Sprint(v)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	return pairs
}
