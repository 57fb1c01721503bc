package treewire

// Element is the engine's view of a UI element. The hosting framework's
// node type maps onto it structurally: a type (plain markup tag string, a
// registered Component value, or any foreign value), a props bag whose
// "children" key holds nested nodes, and an optional reconciliation key.
//
// A tree node is an `any` and may be nil, a string/number/bool primitive,
// an *Element, a []any of nodes, or a map[string]any of plain data.
type Element struct {
	Type  any
	Props map[string]any
	Key   string
}

// ChildrenProp is the props key the engine treats as child-bearing by
// default. Components can declare different fields via ChildFielder.
const ChildrenProp = "children"

// NewElement creates an element of the given type. Trailing children are
// stored under the "children" prop: one child directly, several as a slice.
// The props map is used as-is; pass nil for an element without props.
func NewElement(typ any, props map[string]any, children ...any) *Element {
	if props == nil && len(children) > 0 {
		props = make(map[string]any, 1)
	}
	switch len(children) {
	case 0:
	case 1:
		props[ChildrenProp] = children[0]
	default:
		kids := make([]any, len(children))
		copy(kids, children)
		props[ChildrenProp] = kids
	}
	return &Element{Type: typ, Props: props}
}

// WithKey returns the element with its reconciliation key set.
func (e *Element) WithKey(key string) *Element {
	e.Key = key
	return e
}

// Children returns the value of the element's children prop, or nil.
func (e *Element) Children() any {
	if e.Props == nil {
		return nil
	}
	return e.Props[ChildrenProp]
}

// IsElement reports whether node is a valid element.
func IsElement(node any) bool {
	e, ok := node.(*Element)
	return ok && e != nil && e.Type != nil
}

// isPrimitive reports whether node is a standalone primitive leaf.
func isPrimitive(node any) bool {
	switch node.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
