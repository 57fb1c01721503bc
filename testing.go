package treewire

// RoundTripResult holds both wire forms of a serialize → deserialize →
// serialize cycle, for asserting round-trip fidelity in tests.
//
//	rt, err := treewire.RoundTrip(tw, tree)
//	if err != nil || !rt.Stable() {
//	    t.Fatalf("round trip drifted:\n%s\n%s", rt.FirstJSON, rt.SecondJSON)
//	}
type RoundTripResult struct {
	// FirstJSON is the serialization of the original tree.
	FirstJSON string
	// Node is the tree reconstructed from FirstJSON.
	Node any
	// SecondJSON is the serialization of the reconstructed tree.
	SecondJSON string
}

// Stable reports byte-for-byte equality of the two serializations.
func (r *RoundTripResult) Stable() bool {
	return r.FirstJSON == r.SecondJSON
}

// RoundTrip serializes a tree, reconstructs it, and serializes the result
// again. For trees built from registered components with JSON-serializable
// data the two forms must match exactly.
func RoundTrip(t *Transformer, node any) (*RoundTripResult, error) {
	first, err := t.Serialize(node)
	if err != nil {
		return nil, err
	}
	back, err := t.Deserialize(first)
	if err != nil {
		return nil, err
	}
	second, err := t.Serialize(back)
	if err != nil {
		return nil, err
	}
	return &RoundTripResult{FirstJSON: first, Node: back, SecondJSON: second}, nil
}

// TransformResult pairs the nodes produced by an HTML transform with
// their rendered form, for asserting on markup pipelines.
type TransformResult struct {
	Nodes []any
	HTML  string
}

// TransformAndRender runs TransformHTML and renders the result back to
// markup in one step.
func TransformAndRender(t *Transformer, input string) (*TransformResult, error) {
	nodes, err := t.TransformHTML(input)
	if err != nil {
		return nil, err
	}
	var html string
	for _, n := range nodes {
		s, err := t.RenderString(n)
		if err != nil {
			return nil, err
		}
		html += s
	}
	return &TransformResult{Nodes: nodes, HTML: html}, nil
}
