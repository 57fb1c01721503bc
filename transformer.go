package treewire

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pthm/treewire/lib/encoding"
)

// DefaultWrapperSuffixes are the constructor-name suffixes stripped by the
// unwrapping heuristic when resolving wrapped component types. Higher-order
// wrappers (data binding, theming, styling) commonly decorate the name they
// report; stripping recovers the canonical tag for registry matching.
//
// This is a compatibility shim and inherently best-effort. Components that
// want reliable resolution should be registered and referenced explicitly.
var DefaultWrapperSuffixes = []string{"WithDataBinding", "WithTheme", "WithStyles"}

// DefaultMaxDepth bounds the recursive walk. Realistic UI trees are tens
// of levels deep; the cap turns pathological nesting into a typed error
// instead of stack exhaustion.
const DefaultMaxDepth = 1000

// wrapRE matches a single layer of Prefix(Name) constructor wrapping, as
// reported by memoizing/forwarding wrappers.
var wrapRE = regexp.MustCompile(`^[A-Za-z_$][\w$]*\((.+)\)$`)

// Transformer is the serialization engine. It owns its component registry,
// pattern registry and mode flag, so independent sessions never share
// state; construct one per scope instead of clearing a global.
//
// A Transformer in strict mode (the default) fails fast on anything it
// cannot resolve. Legacy mode degrades unresolvable nodes to best-effort
// generic representations instead.
type Transformer struct {
	registry *Registry
	strict   atomic.Bool
	debug    bool
	maxDepth int
	suffixes []string
	logger   *slog.Logger
	safe     *safeHTML
	enc      *encoding.Encoder
}

// Option configures a Transformer.
type Option func(*transformerConfig)

type transformerConfig struct {
	logger    *slog.Logger
	strict    bool
	debug     bool
	maxDepth  int
	suffixes  []string
	sanitizer *bluemonday.Policy
	packKey   []byte
}

// WithLogger sets the structured logger for warnings and degradations.
func WithLogger(l *slog.Logger) Option {
	return func(c *transformerConfig) { c.logger = l }
}

// WithStrictMode sets the initial mode. The default is strict.
func WithStrictMode(strict bool) Option {
	return func(c *transformerConfig) { c.strict = strict }
}

// WithDebugRendering makes unrecognized shapes render as a readable JSON
// block inside a safe-HTML leaf instead of disappearing. Enable in
// development builds; production keeps the default of rendering nothing.
func WithDebugRendering(debug bool) Option {
	return func(c *transformerConfig) { c.debug = debug }
}

// WithMaxDepth overrides the recursion bound.
func WithMaxDepth(depth int) Option {
	return func(c *transformerConfig) { c.maxDepth = depth }
}

// WithWrapperSuffixes replaces the suffix list used by the name-unwrapping
// heuristic.
func WithWrapperSuffixes(suffixes ...string) Option {
	return func(c *transformerConfig) { c.suffixes = suffixes }
}

// WithSanitizer replaces the bluemonday policy used by the built-in
// safe-HTML leaf component.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(c *transformerConfig) { c.sanitizer = policy }
}

// WithPackingKey enables Pack/Unpack with the given signing/encryption
// key. Keys shorter than 32 bytes are stretched with SHA-256.
func WithPackingKey(key []byte) Option {
	return func(c *transformerConfig) { c.packKey = append([]byte(nil), key...) }
}

// NewTransformer creates a transformer with its own registries. The
// built-in safe-HTML leaf component is pre-registered.
func NewTransformer(opts ...Option) *Transformer {
	cfg := transformerConfig{
		strict:   true,
		maxDepth: DefaultMaxDepth,
		suffixes: DefaultWrapperSuffixes,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	t := &Transformer{
		registry: newRegistry(cfg.logger),
		debug:    cfg.debug,
		maxDepth: cfg.maxDepth,
		suffixes: cfg.suffixes,
		logger:   cfg.logger,
		safe:     newSafeHTML(cfg.sanitizer),
	}
	t.strict.Store(cfg.strict)

	if len(cfg.packKey) > 0 {
		enc, err := encoding.NewEncoder(cfg.packKey)
		if err != nil {
			// Key material is validated up front; reaching this means a
			// programming error, same policy as the registry constructor.
			panic(fmt.Sprintf("treewire: failed to create encoder: %v", err))
		}
		t.enc = enc
	}

	t.registerBuiltins()
	return t
}

func (t *Transformer) registerBuiltins() {
	if err := t.registry.Register(t.safe); err != nil {
		panic(fmt.Sprintf("treewire: built-in registration failed: %v", err))
	}
}

// SetStrictMode switches between fail-fast (strict) and best-effort
// (legacy) policies for all subsequent calls on this transformer.
func (t *Transformer) SetStrictMode(strict bool) {
	t.strict.Store(strict)
}

// IsStrictMode reports the current mode.
func (t *Transformer) IsStrictMode() bool {
	return t.strict.Load()
}

// Register registers components, delegating to the registry. Registration
// stops at the first invalid component.
func (t *Transformer) Register(comps ...Component) error {
	for _, comp := range comps {
		if err := t.registry.Register(comp); err != nil {
			return err
		}
	}
	return nil
}

// Resolve looks up a registered component by tag name.
func (t *Transformer) Resolve(tag string) (Component, bool) {
	return t.registry.Resolve(tag)
}

// List returns the registered tag names.
func (t *Transformer) List() []string {
	return t.registry.List()
}

// Patterns returns the transformer's pattern registry.
func (t *Transformer) Patterns() *PatternRegistry {
	return t.registry.Patterns()
}

// Clear resets the component and pattern registries for an independent
// session, then re-registers the built-in safe-HTML leaf.
func (t *Transformer) Clear() {
	t.registry.Clear()
	t.registerBuiltins()
}

// Serialize walks a node (or array of nodes) and returns the canonical
// JSON text representation.
func (t *Transformer) Serialize(node any) (string, error) {
	v, err := t.serializeNode(node, 0)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("treewire: marshal: %w", err)
	}
	return string(out), nil
}

// Deserialize reconstructs a node tree from a JSON string or an already
// decoded object/array. A string that fails to parse as JSON is, in legacy
// mode, treated as literal text content - "it was just text" is not an
// error there; strict mode reports the parse failure.
func (t *Transformer) Deserialize(input any) (any, error) {
	switch in := input.(type) {
	case string:
		var v any
		if err := json.Unmarshal([]byte(in), &v); err != nil {
			if t.IsStrictMode() {
				return nil, fmt.Errorf("treewire: parse: %w", err)
			}
			return in, nil
		}
		return t.deserializeValue(v, 0)
	case []byte:
		return t.Deserialize(string(in))
	case Record:
		return t.deserializeValue(map[string]any(in), 0)
	default:
		return t.deserializeValue(input, 0)
	}
}

// serializeNode is the recursive serializer.
func (t *Transformer) serializeNode(node any, depth int) (any, error) {
	if depth > t.maxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrMaxDepthExceeded, depth)
	}
	if node == nil {
		return nil, nil
	}

	// Arrays, not sets: order is rendering order.
	if arr, ok := node.([]any); ok {
		out := make([]any, len(arr))
		for i, child := range arr {
			v, err := t.serializeNode(child, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	if isPrimitive(node) {
		return node, nil
	}

	if el, ok := node.(*Element); ok && el != nil {
		if comp, ok := t.resolveComponent(el); ok {
			return t.serializeComponent(comp, el, depth)
		}
		if t.IsStrictMode() {
			return nil, fmt.Errorf("%w: %s", ErrUnregisteredComponent, t.elementTypeName(el))
		}
		t.logger.Warn("serializing unregistered element through fallback", "elementType", t.elementTypeName(el))
		return t.fallbackRecord(node, el.Key, depth)
	}

	if t.IsStrictMode() {
		return nil, fmt.Errorf("%w: unserializable node %T", ErrUnregisteredComponent, node)
	}
	return t.fallbackRecord(node, "", depth)
}

// serializeComponent produces the component record for a resolved element.
// The component's own ToJSON shapes the data; the engine then folds every
// declared child-bearing field back into the recursive walk.
func (t *Transformer) serializeComponent(comp Component, el *Element, depth int) (any, error) {
	data, err := comp.ToJSON(el.Props)
	if err != nil {
		return nil, fmt.Errorf("treewire: %s.ToJSON: %w", comp.TagName(), err)
	}

	for _, field := range childFields(comp) {
		if data == nil {
			break
		}
		raw, ok := data[field]
		if !ok {
			continue
		}
		sv, err := t.serializeNode(raw, depth+1)
		if err != nil {
			return nil, err
		}
		data[field] = sv
	}

	rec := map[string]any{
		fieldTagName: comp.TagName(),
		fieldVersion: comp.Version(),
		fieldData:    data,
	}
	if el.Key != "" {
		rec[fieldKey] = el.Key
	}
	return rec, nil
}

// fallbackRecord wraps a generic serialization in the reserved fallback
// tag so the legacy round trip stays symmetric.
func (t *Transformer) fallbackRecord(node any, key string, depth int) (any, error) {
	data, err := t.genericSerialize(node, depth+1)
	if err != nil {
		return nil, err
	}
	rec := map[string]any{
		fieldTagName: FallbackTag,
		fieldVersion: fallbackVersion,
		fieldData:    data,
	}
	if key != "" {
		rec[fieldKey] = key
	}
	return rec, nil
}

// deserializeValue is the recursive deserializer over decoded JSON values.
func (t *Transformer) deserializeValue(v any, depth int) (any, error) {
	if depth > t.maxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrMaxDepthExceeded, depth)
	}

	switch val := v.(type) {
	case nil:
		return nil, nil

	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			dv, err := t.deserializeValue(child, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil

	case map[string]any:
		if looksLikeRecord(val) {
			return t.deserializeRecord(Record(val), depth)
		}
		if isGenericRecord(val) {
			return t.genericDeserialize(val, depth)
		}
		return t.unrecognizedShape(val)
	}

	if isPrimitive(v) {
		return v, nil
	}
	return t.unrecognizedShape(v)
}

// deserializeRecord handles an object shaped like a component descriptor.
//
// Two distinct failure classes live here. A record missing its version or
// its data key entirely is malformed and rejected in both modes; a
// well-formed record naming an unknown tag is a policy matter - strict
// mode rejects it, legacy mode degrades it to a generic element.
func (t *Transformer) deserializeRecord(rec Record, depth int) (any, error) {
	tag := rec.Tag()

	if _, ok := rec[fieldVersion]; !ok {
		return nil, fmt.Errorf("%w: %q missing version", ErrMalformedComponentData, tag)
	}
	if !rec.HasData() {
		return nil, fmt.Errorf("%w: %q missing data", ErrMalformedComponentData, tag)
	}

	if tag == FallbackTag {
		node, err := t.deserializeFallback(rec, depth)
		if err != nil {
			return nil, err
		}
		return reapplyKey(node, rec.Key()), nil
	}

	comp, found := t.registry.Resolve(tag)
	if !found {
		if t.IsStrictMode() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, tag)
		}
		t.logger.Warn("unknown component tag, degrading to generic element", "tag", tag)
		node, err := t.degradeUnknownRecord(rec, depth)
		if err != nil {
			return nil, err
		}
		return reapplyKey(node, rec.Key()), nil
	}

	if v := rec.Version(); v != comp.Version() {
		t.logger.Warn("component version mismatch", "tag", tag, "recorded", v, "registered", comp.Version())
	}

	hydrated, err := t.hydrateChildFields(comp, rec, depth)
	if err != nil {
		return nil, err
	}

	el, err := comp.FromJSON(hydrated)
	if err != nil {
		if t.IsStrictMode() {
			return nil, fmt.Errorf("treewire: %s.FromJSON: %w", tag, err)
		}
		t.logger.Warn("reconstruction failed, dropping node", "tag", tag, "error", err)
		return nil, nil
	}

	// FromJSON is agnostic to keys; reapply so reconciliation identity
	// survives the round trip.
	return reapplyKey(el, rec.Key()), nil
}

// hydrateChildFields returns a copy of the record whose child-bearing data
// fields have been reconstructed, so FromJSON receives live child nodes.
func (t *Transformer) hydrateChildFields(comp Component, rec Record, depth int) (Record, error) {
	data := rec.Data()
	if data == nil {
		return rec, nil
	}

	fields := childFields(comp)
	needsCopy := false
	for _, f := range fields {
		if _, ok := data[f]; ok {
			needsCopy = true
			break
		}
	}
	if !needsCopy {
		return rec, nil
	}

	newData := make(map[string]any, len(data))
	for k, v := range data {
		newData[k] = v
	}
	for _, f := range fields {
		raw, ok := newData[f]
		if !ok {
			continue
		}
		dv, err := t.deserializeValue(raw, depth+1)
		if err != nil {
			return nil, err
		}
		newData[f] = dv
	}

	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	out[fieldData] = newData
	return out, nil
}

// deserializeFallback inverts a reserved fallback record.
func (t *Transformer) deserializeFallback(rec Record, depth int) (any, error) {
	data, ok := rec[fieldData].(map[string]any)
	if !ok {
		return nil, nil
	}
	return t.genericDeserialize(data, depth+1)
}

// degradeUnknownRecord turns a well-formed record with an unknown tag into
// an untyped element carrying the record's data as props, children
// reconstructed. The result renders structurally even though the typed
// component is missing.
func (t *Transformer) degradeUnknownRecord(rec Record, depth int) (any, error) {
	data := rec.Data()
	props := make(map[string]any, len(data))
	for k, v := range data {
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
	return &Element{Type: rec.Tag(), Props: props}, nil
}

// unrecognizedShape handles decoded values that are neither records nor
// generic union members. With debug rendering on, the value comes back as
// a readable JSON block so developers can see what failed to resolve;
// otherwise it resolves to nothing rather than crashing the tree.
func (t *Transformer) unrecognizedShape(v any) (any, error) {
	t.logger.Warn("unrecognized serialized shape", "value", fmt.Sprintf("%.120v", v))
	if !t.debug {
		return nil, nil
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		pretty = []byte(fmt.Sprint(v))
	}
	return t.safe.element("<pre>" + string(pretty) + "</pre>"), nil
}

// resolveComponent resolves an element's type against the registry: direct
// Component identity first, then exact tag strings, then the
// name-unwrapping heuristics for wrapped constructor names.
func (t *Transformer) resolveComponent(el *Element) (Component, bool) {
	switch typ := el.Type.(type) {
	case Component:
		if comp, ok := t.registry.Resolve(typ.TagName()); ok {
			return comp, true
		}
		return nil, false
	case string:
		if comp, ok := t.registry.Resolve(typ); ok {
			return comp, true
		}
		if comp, ok := t.registry.Resolve(t.unwrapName(typ)); ok {
			return comp, true
		}
		return nil, false
	case nil:
		return nil, false
	}

	name := reflect.TypeOf(el.Type).Name()
	if name == "" {
		name = reflect.TypeOf(el.Type).String()
	}
	if comp, ok := t.registry.Resolve(name); ok {
		return comp, true
	}
	if comp, ok := t.registry.Resolve(t.unwrapName(name)); ok {
		return comp, true
	}
	return nil, false
}

// unwrapName strips one layer of Prefix(Name) wrapping, then any number of
// known wrapper suffixes, to recover a canonical component name. This is
// string matching and necessarily incomplete; explicit registration is the
// supported path.
func (t *Transformer) unwrapName(name string) string {
	if m := wrapRE.FindStringSubmatch(name); m != nil {
		name = m[1]
	}
	for {
		stripped := name
		for _, suffix := range t.suffixes {
			if len(name) > len(suffix) && strings.HasSuffix(name, suffix) {
				stripped = name[:len(name)-len(suffix)]
				break
			}
		}
		if stripped == name {
			return name
		}
		name = stripped
	}
}

// elementTypeName reports the normalized type name of an element, for
// fallback records and error messages.
func (t *Transformer) elementTypeName(el *Element) string {
	switch typ := el.Type.(type) {
	case Component:
		return typ.TagName()
	case string:
		return t.unwrapName(typ)
	case nil:
		return "<nil>"
	}
	name := reflect.TypeOf(el.Type).Name()
	if name == "" {
		name = reflect.TypeOf(el.Type).String()
	}
	return t.unwrapName(name)
}

// childFields returns the component's declared child-bearing data fields.
func childFields(comp Component) []string {
	if cf, ok := comp.(ChildFielder); ok {
		return cf.ChildFields()
	}
	return []string{ChildrenProp}
}

func reapplyKey(node any, key string) any {
	if key == "" {
		return node
	}
	if el, ok := node.(*Element); ok && el != nil {
		el.Key = key
	}
	return node
}
