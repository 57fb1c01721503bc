package treewire

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// PatternHandler converts a raw markup element into a serializable
// description: either a component record (map with tagName/version/data)
// or arbitrary JSON-like data interpreted by the generic deserializer.
//
// A handler that returns an error, or panics, degrades its element to
// opaque-leaf rendering; it never aborts the surrounding document.
type PatternHandler func(el *html.Node) (any, error)

type patternEntry struct {
	selector string
	sel      cascadia.Sel
	handler  PatternHandler
}

// PatternRegistry maps CSS selectors to markup handlers. Matching is a
// linear scan in registration order - first registered, first matched -
// which is fine for the expected scale of tens of patterns.
type PatternRegistry struct {
	mu      sync.RWMutex
	entries []patternEntry
	index   map[string]int
	logger  *slog.Logger
}

func newPatternRegistry(logger *slog.Logger) *PatternRegistry {
	return &PatternRegistry{
		index:  make(map[string]int),
		logger: logger,
	}
}

// Register adds a handler for a CSS selector. Re-registering a selector
// overwrites the previous handler in place (keeping its original match
// priority) and logs a warning. Returns an error for an unparseable
// selector or a nil handler.
func (p *PatternRegistry) Register(selector string, handler PatternHandler) error {
	if handler == nil {
		return fmt.Errorf("treewire: nil handler for pattern %q", selector)
	}
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return fmt.Errorf("treewire: invalid pattern selector %q: %w", selector, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if i, exists := p.index[selector]; exists {
		p.logger.Warn("overwriting pattern handler", "selector", selector)
		p.entries[i].handler = handler
		return nil
	}
	p.index[selector] = len(p.entries)
	p.entries = append(p.entries, patternEntry{selector: selector, sel: sel, handler: handler})
	return nil
}

// Has reports whether a handler is registered for the exact selector.
func (p *PatternRegistry) Has(selector string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.index[selector]
	return ok
}

// Selectors returns the registered selectors in priority order.
func (p *PatternRegistry) Selectors() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.selector
	}
	return out
}

// MatchFirst returns the first registered handler whose selector matches
// the element, or nil. When more than one selector matches, the extra
// matches are logged: pattern priority is registration order, which in
// turn depends on component registration order, so a silent overlap is a
// latent behavior change waiting to happen.
func (p *PatternRegistry) MatchFirst(el *html.Node) PatternHandler {
	if el == nil || el.Type != html.ElementNode {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	var winner PatternHandler
	var winnerSel string
	var extra []string
	for _, e := range p.entries {
		if !e.sel.Match(el) {
			continue
		}
		if winner == nil {
			winner = e.handler
			winnerSel = e.selector
		} else {
			extra = append(extra, e.selector)
		}
	}
	if len(extra) > 0 {
		p.logger.Warn("ambiguous pattern match, first registered wins",
			"element", el.Data, "matched", winnerSel, "shadowed", extra)
	}
	return winner
}

// matchesAny reports whether any registered selector matches the element.
func (p *PatternRegistry) matchesAny(el *html.Node) bool {
	if el == nil || el.Type != html.ElementNode {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, e := range p.entries {
		if e.sel.Match(el) {
			return true
		}
	}
	return false
}

func (p *PatternRegistry) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
	p.index = make(map[string]int)
}
