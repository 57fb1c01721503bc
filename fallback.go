package treewire

import (
	"fmt"
	"reflect"
)

// FallbackTag is the reserved tag name wrapping nodes that were serialized
// through the generic fallback path in legacy mode. It cannot be taken by
// a registered component.
const FallbackTag = "treewire.fallback"

const fallbackVersion = "1.0.0"

// Generic tagged-union variants. Every tree node is representable in this
// union; it is the wire shape for nodes that carry no component identity.
const (
	genericPrimitive = "primitive"
	genericString    = "string"
	genericArray     = "array"
	genericElement   = "element"
	genericObject    = "object"
)

const fieldType = "type"

func isGenericRecord(m map[string]any) bool {
	switch m[fieldType] {
	case genericPrimitive, genericString, genericArray, genericElement, genericObject:
		return true
	}
	return false
}

// genericSerialize converts an arbitrary node - foreign element, primitive,
// plain object, array - into the tagged-union representation. It is only
// reached in legacy mode; strict mode rejects such nodes earlier.
func (t *Transformer) genericSerialize(node any, depth int) (any, error) {
	if depth > t.maxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrMaxDepthExceeded, depth)
	}
	if node == nil {
		return nil, nil
	}

	switch n := node.(type) {
	case []any:
		kids := make([]any, len(n))
		for i, child := range n {
			c, err := t.genericSerialize(child, depth+1)
			if err != nil {
				return nil, err
			}
			kids[i] = c
		}
		return map[string]any{fieldType: genericArray, "children": kids}, nil

	case *Element:
		if n == nil {
			return nil, nil
		}
		props, err := t.genericSerializeProps(n.Props, depth)
		if err != nil {
			return nil, err
		}
		rec := map[string]any{
			fieldType:     genericElement,
			"elementType": t.elementTypeName(n),
			"props":       props,
		}
		if n.Key != "" {
			rec[fieldKey] = n.Key
		}
		return rec, nil

	case map[string]any:
		data := make(map[string]any, len(n))
		for k, v := range n {
			sv, err := t.genericSerialize(v, depth+1)
			if err != nil {
				return nil, err
			}
			data[k] = sv
		}
		return map[string]any{fieldType: genericObject, "data": data}, nil
	}

	if isPrimitive(node) {
		return map[string]any{fieldType: genericPrimitive, "value": node}, nil
	}
	// Functions are not serializable; anything else exotic degrades to its
	// string form rather than failing the whole tree.
	if reflect.ValueOf(node).Kind() == reflect.Func {
		return nil, nil
	}
	return map[string]any{fieldType: genericString, "value": fmt.Sprint(node)}, nil
}

// genericSerializeProps serializes a foreign element's props bag. The
// children prop re-enters the full serializer so registered components
// nested under a foreign element still serialize as typed records.
// Function-valued props are stripped to null: event handlers do not
// survive a round trip through the fallback path.
func (t *Transformer) genericSerializeProps(props map[string]any, depth int) (map[string]any, error) {
	if props == nil {
		return nil, nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		if v != nil && reflect.ValueOf(v).Kind() == reflect.Func {
			out[k] = nil
			continue
		}
		if k == ChildrenProp {
			sv, err := t.serializeNode(v, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = sv
			continue
		}
		if v == nil || isPrimitive(v) {
			out[k] = v
			continue
		}
		sv, err := t.genericSerialize(v, depth+1)
		if err != nil {
			return nil, err
		}
		out[k] = sv
	}
	return out, nil
}

// genericDeserialize inverts genericSerialize for a single union record.
func (t *Transformer) genericDeserialize(rec map[string]any, depth int) (any, error) {
	if depth > t.maxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrMaxDepthExceeded, depth)
	}

	switch rec[fieldType] {
	case genericPrimitive, genericString:
		return rec["value"], nil

	case genericArray:
		kids, _ := rec["children"].([]any)
		out := make([]any, len(kids))
		for i, c := range kids {
			v, err := t.genericDeserializeValue(c, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case genericObject:
		data, _ := rec["data"].(map[string]any)
		out := make(map[string]any, len(data))
		for k, v := range data {
			dv, err := t.genericDeserializeValue(v, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil

	case genericElement:
		return t.genericDeserializeElement(rec, depth)
	}

	t.logger.Warn("unrecognized generic record", "type", rec[fieldType])
	return nil, nil
}

// genericDeserializeElement reconstructs a foreign element. Plain markup
// tags come back as generic elements; anything that cannot be expressed as
// a markup tag renders its reconstructed children through the safe-HTML
// leaf instead of failing.
func (t *Transformer) genericDeserializeElement(rec map[string]any, depth int) (any, error) {
	name, _ := rec["elementType"].(string)
	rawProps, _ := rec["props"].(map[string]any)

	props := make(map[string]any, len(rawProps))
	for k, v := range rawProps {
		var (
			dv  any
			err error
		)
		if k == ChildrenProp {
			dv, err = t.deserializeValue(v, depth+1)
		} else {
			dv, err = t.genericDeserializeValue(v, depth+1)
		}
		if err != nil {
			return nil, err
		}
		props[k] = dv
	}

	key, _ := rec[fieldKey].(string)

	if isMarkupTag(name) {
		el := &Element{Type: name, Props: props, Key: key}
		return el, nil
	}

	inner, err := t.RenderString(props[ChildrenProp])
	if err != nil {
		t.logger.Warn("cannot render fallback element children", "elementType", name, "error", err)
		inner = ""
	}
	return t.safe.element(inner).WithKey(key), nil
}

// genericDeserializeValue dispatches a nested value: union records invert
// through the generic path, component records re-enter full resolution,
// everything else passes through structurally.
func (t *Transformer) genericDeserializeValue(v any, depth int) (any, error) {
	if depth > t.maxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrMaxDepthExceeded, depth)
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]any, len(val))
		for i, c := range val {
			dv, err := t.genericDeserializeValue(c, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	case map[string]any:
		if isGenericRecord(val) {
			return t.genericDeserialize(val, depth+1)
		}
		if looksLikeRecord(val) {
			return t.deserializeValue(val, depth+1)
		}
		out := make(map[string]any, len(val))
		for k, c := range val {
			dv, err := t.genericDeserializeValue(c, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil
	}
	return v, nil
}

// isMarkupTag reports whether a name can be expressed as a plain markup
// tag: lowercase start, as HTML element names are. Component-style names
// (capitalized) cannot be rebuilt as live components from the fallback
// path and degrade to safe-HTML rendering instead.
func isMarkupTag(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'a' && c <= 'z'
}
