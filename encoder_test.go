package treewire

import (
	"errors"
	"strings"
	"testing"
)

var packKey = []byte("0123456789abcdef0123456789abcdef")

func TestPackUnpackRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		sensitive bool
	}{
		{"signed", false},
		{"encrypted", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw, _ := newTestTransformer(t, WithPackingKey(packKey))

			tree := NewElement(testCard{}, map[string]any{"title": "packed"},
				NewElement(testButton{}, map[string]any{"label": "go"}),
			)
			packed, err := tw.Pack(tree, tt.sensitive)
			if err != nil {
				t.Fatalf("pack: %v", err)
			}

			back, err := tw.Unpack(packed, tt.sensitive)
			if err != nil {
				t.Fatalf("unpack: %v", err)
			}
			el, ok := back.(*Element)
			if !ok {
				t.Fatalf("node = %T, want *Element", back)
			}
			if _, ok := el.Type.(testCard); !ok {
				t.Errorf("type = %T, want testCard", el.Type)
			}
			child, ok := el.Children().(*Element)
			if !ok {
				t.Fatalf("child = %#v", el.Children())
			}
			if child.Props["label"] != "go" {
				t.Errorf("child props = %#v", child.Props)
			}
		})
	}
}

func TestPackSignedIsTamperEvident(t *testing.T) {
	tw, _ := newTestTransformer(t, WithPackingKey(packKey))

	packed, err := tw.Pack(NewElement(testButton{}, map[string]any{"label": "x"}), false)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	// Flip a payload character, keeping the signature.
	dot := strings.Index(packed, ".")
	body := []byte(packed[:dot])
	if body[0] == 'A' {
		body[0] = 'B'
	} else {
		body[0] = 'A'
	}
	tampered := string(body) + packed[dot:]

	_, err = tw.Unpack(tampered, false)
	if !IsPackingError(err) {
		t.Fatalf("err = %v, want packing error", err)
	}
}

func TestPackWithoutKey(t *testing.T) {
	tw, _ := newTestTransformer(t)

	if _, err := tw.Pack("x", false); !errors.Is(err, ErrPackingDisabled) {
		t.Errorf("Pack err = %v, want ErrPackingDisabled", err)
	}
	if _, err := tw.Unpack("x.y", false); !errors.Is(err, ErrPackingDisabled) {
		t.Errorf("Unpack err = %v, want ErrPackingDisabled", err)
	}
}
