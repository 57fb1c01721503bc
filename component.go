package treewire

import (
	"context"

	"github.com/a-h/templ"
)

// Component is the serialization contract a UI node type implements to
// participate in the typed round trip.
//
// TagName and Version identify the component on the wire; both must be
// non-empty and stable across releases that should remain readable.
// ToJSON converts live props into a JSON-compatible data shape, and
// FromJSON reconstructs an element from a previously serialized record.
//
// The engine folds the data's child-bearing fields (default: "children")
// into its own recursive walk on both paths, so ToJSON can forward nested
// nodes untouched and FromJSON receives them already reconstructed.
//
// Version semantics belong to the component. The engine never enforces
// compatibility; it only logs a warning when a record's version differs
// from the registered one.
type Component interface {
	TagName() string
	Version() string
	FromJSON(rec Record) (*Element, error)
	ToJSON(props map[string]any) (map[string]any, error)
}

// PatternProvider is implemented by components that claim raw markup.
// RegisterPatternHandlers is invoked once, at registration time, with the
// transformer's pattern registry.
type PatternProvider interface {
	RegisterPatternHandlers(reg *PatternRegistry)
}

// ChildFielder is implemented by components whose serialized data carries
// nested nodes under fields other than "children". The engine recurses
// into every declared field on both serialize and deserialize.
type ChildFielder interface {
	ChildFields() []string
}

// Renderer is implemented by components that can render their reconstructed
// props to HTML. Render receives the element's props (children already
// reconstructed) and produces templ output; components without a Renderer
// fall back to structural rendering of their children.
type Renderer interface {
	Render(ctx context.Context, props map[string]any) templ.Component
}

// Record is the serialized component record: a JSON object carrying
// tagName, version, data and an optional key. It is kept as the raw map so
// the presence of the data key survives decoding - a present-but-null data
// is a valid "no props" component, while an absent data key is malformed.
type Record map[string]any

// Wire-format field names.
const (
	fieldTagName = "tagName"
	fieldVersion = "version"
	fieldData    = "data"
	fieldKey     = "key"
)

// Tag returns the record's tagName, or "" if absent or not a string.
func (r Record) Tag() string {
	s, _ := r[fieldTagName].(string)
	return s
}

// Version returns the record's version, or "" if absent or not a string.
func (r Record) Version() string {
	s, _ := r[fieldVersion].(string)
	return s
}

// Data returns the record's data object, or nil for a null/absent data.
func (r Record) Data() map[string]any {
	m, _ := r[fieldData].(map[string]any)
	return m
}

// HasData reports whether the data key is present at all, regardless of
// its value. Records without it are malformed descriptors.
func (r Record) HasData() bool {
	_, ok := r[fieldData]
	return ok
}

// Key returns the record's reconciliation key, or "".
func (r Record) Key() string {
	s, _ := r[fieldKey].(string)
	return s
}

// looksLikeRecord reports whether a decoded object is shaped like a
// component descriptor: it names a tag. Whether the rest of the shape is
// valid is decided by the deserializer.
func looksLikeRecord(m map[string]any) bool {
	s, ok := m[fieldTagName].(string)
	return ok && s != ""
}
