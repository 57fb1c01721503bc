// Package treewire serializes UI component trees to JSON and reconstructs
// them later, optionally upgrading raw HTML into typed components along the
// way.
//
// The engine is a library with no HTTP or storage surface of its own: a
// hosting application builds element trees, registers the component types
// that participate in serialization, and asks a Transformer to walk the
// tree in either direction.
//
// # Core Concepts
//
// Components implement the Component interface to declare a stable identity
// (tag name and version) plus the two halves of the round trip:
//
//	type Card struct{}
//
//	func (Card) TagName() string { return "Card" }
//	func (Card) Version() string { return "1.2.0" }
//
//	func (Card) ToJSON(props map[string]any) (map[string]any, error) {
//	    return map[string]any{"title": props["title"], "children": props["children"]}, nil
//	}
//
//	func (c Card) FromJSON(rec treewire.Record) (*treewire.Element, error) {
//	    return treewire.NewElement(c, rec.Data()), nil
//	}
//
// The data shape a component emits is opaque to the engine; only the owning
// component interprets it. The engine folds child-bearing fields (by default
// the "children" key of the emitted data) back into the recursive walk, so
// nested registered components, foreign elements and bare primitives all
// survive the round trip without each component reimplementing recursion.
//
// # Strict and Legacy Modes
//
// A Transformer runs in strict mode by default: any element whose type does
// not resolve against the registry is a hard error, as is any serialized
// record naming an unknown tag. Legacy mode trades integrity for
// availability - unknown elements degrade to a structural fallback
// representation and unknown tags render through the generic deserializer,
// which is the right policy when displaying partially-known or third-party
// content where something on screen beats a crashed tree.
//
// Malformed records are different: a record that carries a tagName but is
// missing its data key entirely is rejected in both modes. A present data
// key with a null value is a valid "no props" component.
//
// # HTML Transformation
//
// TransformHTML parses a markup string and rewrites it into element trees.
// Components may self-register CSS selector patterns at registration time;
// the first registered pattern that matches an element wins, and its
// handler output feeds back through the same reconstruction machinery as
// the JSON path. Elements nothing claims are preserved structurally, with
// unmatched leaf markup flowing through a sanitizing safe-HTML component.
// A handler that fails takes down only its own element, never the document.
//
// # Registration
//
// Components are registered explicitly with a Transformer (no init() side
// effects, no process globals):
//
//	tw := treewire.NewTransformer()
//	if err := tw.Register(Card{}, Button{}); err != nil {
//	    log.Fatal(err)
//	}
//	out, err := tw.Serialize(tree)
//
// Each Transformer owns its registry, pattern table and mode flag, so
// independent sessions (and tests) never share state.
//
// # Wire Formats
//
// Serialize produces the canonical JSON text format:
//
//	{"tagName": "Card", "version": "1.2.0", "data": {...}, "key": "a1"}
//
// Pack wraps the same structure in a compact msgpack encoding that is
// HMAC-signed by default or AES-GCM encrypted for sensitive payloads, for
// applications persisting trees outside their trust boundary.
package treewire
