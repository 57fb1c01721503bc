package treewire

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

// SafeHTMLTag identifies the built-in safe-HTML leaf component: the
// last-resort display for markup nothing else claims. The payload is
// sanitized before rendering, so untrusted content degrades to inert HTML
// rather than script execution.
const SafeHTMLTag = "SafeHtml"

// safeHTML is registered in every transformer (and re-registered after
// Clear). Its data shape is {"html": string}.
type safeHTML struct {
	policy *bluemonday.Policy
}

func newSafeHTML(policy *bluemonday.Policy) *safeHTML {
	if policy == nil {
		policy = bluemonday.UGCPolicy()
	}
	return &safeHTML{policy: policy}
}

func (s *safeHTML) TagName() string { return SafeHTMLTag }
func (s *safeHTML) Version() string { return "1.0.0" }

func (s *safeHTML) ToJSON(props map[string]any) (map[string]any, error) {
	raw, _ := props["html"].(string)
	return map[string]any{"html": raw}, nil
}

func (s *safeHTML) FromJSON(rec Record) (*Element, error) {
	raw, _ := rec.Data()["html"].(string)
	return NewElement(s, map[string]any{"html": raw}), nil
}

// ChildFields declares no child-bearing fields: the payload is literal
// markup, never recursed into.
func (s *safeHTML) ChildFields() []string { return nil }

func (s *safeHTML) Render(ctx context.Context, props map[string]any) templ.Component {
	raw, _ := props["html"].(string)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s.policy.Sanitize(raw))
		return err
	})
}

// element wraps a raw markup payload in a safe-HTML leaf.
func (s *safeHTML) element(raw string) *Element {
	return NewElement(s, map[string]any{"html": raw})
}
