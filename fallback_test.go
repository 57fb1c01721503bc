package treewire

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGenericRoundTripPlainData(t *testing.T) {
	tw, _ := newTestTransformer(t, WithStrictMode(false))

	tests := []struct {
		name string
		node any
	}{
		{"object", map[string]any{"a": "x", "b": float64(2), "nested": map[string]any{"c": true}}},
		{"object with list", map[string]any{"items": []any{"one", "two"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tw.Serialize(tt.node)
			if err != nil {
				t.Fatalf("serialize: %v", err)
			}
			back, err := tw.Deserialize(out)
			if err != nil {
				t.Fatalf("deserialize: %v", err)
			}
			if diff := cmp.Diff(tt.node, back); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenericFunctionPropsStripped(t *testing.T) {
	tw, _ := newTestTransformer(t, WithStrictMode(false))

	el := NewElement("button", map[string]any{
		"class":   "cta",
		"onClick": func() {},
	})
	out, err := tw.Serialize(el)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	back, err := tw.Deserialize(out)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	got := back.(*Element)
	if got.Props["class"] != "cta" {
		t.Errorf("scalar prop lost: %#v", got.Props)
	}
	// Event handlers are not serializable and do not survive the trip.
	if got.Props["onClick"] != nil {
		t.Errorf("function prop = %#v, want nil", got.Props["onClick"])
	}
}

func TestGenericExoticValueDegradesToString(t *testing.T) {
	tw, _ := newTestTransformer(t, WithStrictMode(false))

	type opaque struct{ n int }
	out, err := tw.Serialize(map[string]any{"v": opaque{n: 7}})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	back, err := tw.Deserialize(out)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	m := back.(map[string]any)
	if _, ok := m["v"].(string); !ok {
		t.Errorf("exotic value = %#v, want string form", m["v"])
	}
}

func TestGenericNonMarkupElementType(t *testing.T) {
	// A fallback element whose type cannot be expressed as a markup tag
	// renders its children through the safe-HTML container instead of
	// failing.
	tw, _ := newTestTransformer(t, WithStrictMode(false))

	el := NewElement("ThirdPartyChart", map[string]any{}, "fallback caption")
	out, err := tw.Serialize(el)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	back, err := tw.Deserialize(out)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	leaf := back.(*Element)
	comp, ok := leaf.Type.(Component)
	if !ok || comp.TagName() != SafeHTMLTag {
		t.Fatalf("type = %T, want safe-HTML leaf", leaf.Type)
	}
	if raw, _ := leaf.Props["html"].(string); !strings.Contains(raw, "fallback caption") {
		t.Errorf("children not preserved: %q", raw)
	}
}

func TestGenericElementKeySurvives(t *testing.T) {
	tw, _ := newTestTransformer(t, WithStrictMode(false))

	el := NewElement("li", map[string]any{"class": "row"}).WithKey("item-3")
	out, err := tw.Serialize(el)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	back, err := tw.Deserialize(out)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got := back.(*Element); got.Key != "item-3" {
		t.Errorf("key = %q, want item-3", got.Key)
	}
}

func TestIsMarkupTag(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"div", true},
		{"custom-tag", true},
		{"Button", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isMarkupTag(tt.name); got != tt.want {
			t.Errorf("isMarkupTag(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
