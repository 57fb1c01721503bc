package treewire

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func parseFirstElement(t *testing.T, markup string) *html.Node {
	t.Helper()
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	frag, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, n := range frag {
		if n.Type == html.ElementNode {
			return n
		}
	}
	t.Fatal("no element in markup")
	return nil
}

func constHandler(v any) PatternHandler {
	return func(el *html.Node) (any, error) { return v, nil }
}

func TestPatternRegisterAndMatch(t *testing.T) {
	tw, _ := newTestTransformer(t)
	reg := tw.Patterns()

	if err := reg.Register("div.note", constHandler("note")); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("span", constHandler("span")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		markup string
		want   any
	}{
		{"class match", `<div class="note">x</div>`, "note"},
		{"tag match", `<span>x</span>`, "span"},
		{"no match", `<p>x</p>`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := parseFirstElement(t, tt.markup)
			handler := reg.MatchFirst(el)
			if tt.want == nil {
				if handler != nil {
					t.Error("unexpected match")
				}
				return
			}
			if handler == nil {
				t.Fatal("no handler matched")
			}
			out, err := handler(el)
			if err != nil || out != tt.want {
				t.Errorf("handler output = %v, %v", out, err)
			}
		})
	}
}

func TestPatternFirstRegisteredWins(t *testing.T) {
	tw, logs := newTestTransformer(t)
	reg := tw.Patterns()

	if err := reg.Register("div", constHandler("first")); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("div.note", constHandler("second")); err != nil {
		t.Fatal(err)
	}

	el := parseFirstElement(t, `<div class="note">x</div>`)
	handler := reg.MatchFirst(el)
	out, _ := handler(el)
	if out != "first" {
		t.Errorf("match = %v, want first registered", out)
	}
	// Overlap is not silent: registration order decides, so shadowed
	// selectors get logged.
	if !strings.Contains(logs.String(), "ambiguous pattern match") {
		t.Error("expected an ambiguity warning")
	}
}

func TestPatternOverwriteKeepsPriority(t *testing.T) {
	tw, logs := newTestTransformer(t)
	reg := tw.Patterns()

	if err := reg.Register("div", constHandler("old")); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("p", constHandler("other")); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("div", constHandler("new")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "overwriting pattern handler") {
		t.Error("expected an overwrite warning")
	}

	el := parseFirstElement(t, `<div>x</div>`)
	out, _ := reg.MatchFirst(el)(el)
	if out != "new" {
		t.Errorf("match = %v, want overwritten handler", out)
	}
	if len(reg.Selectors()) != 2 {
		t.Errorf("selectors = %v, want 2 entries", reg.Selectors())
	}
}

func TestPatternRegisterErrors(t *testing.T) {
	tw, _ := newTestTransformer(t)
	reg := tw.Patterns()

	if err := reg.Register("div", nil); err == nil {
		t.Error("nil handler must be rejected")
	}
	if err := reg.Register("][", constHandler(nil)); err == nil {
		t.Error("invalid selector must be rejected")
	}
}
