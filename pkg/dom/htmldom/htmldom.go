// Package htmldom implements the dom interfaces over a statically parsed
// HTML tree, with synthetic event dispatch for driving the integration in
// tests and server-side rendering contexts.
package htmldom

import (
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/uibus/uibus/pkg/dom"
)

// Document is a parsed HTML document acting as a delegation root. It tracks
// the handlers attached per native event type so teardown symmetry is
// observable.
type Document struct {
	mu        sync.Mutex
	doc       *goquery.Document
	listeners map[string][]*registration
}

// registration gives each handler a stable identity; Go funcs are not
// comparable, so removal works by pointer instead.
type registration struct {
	h dom.Handler
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	gd, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{
		doc:       gd,
		listeners: make(map[string][]*registration),
	}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// AddEventListener attaches a delegated handler for the native event type
// and returns a remover that detaches exactly that handler.
func (d *Document) AddEventListener(eventType string, h dom.Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	reg := &registration{h: h}
	d.listeners[eventType] = append(d.listeners[eventType], reg)

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		regs := d.listeners[eventType]
		for i, r := range regs {
			if r == reg {
				d.listeners[eventType] = append(regs[:i], regs[i+1:]...)
				break
			}
		}
		if len(d.listeners[eventType]) == 0 {
			delete(d.listeners, eventType)
		}
	}
}

// ListenerCount reports how many delegated handlers are attached for the
// native event type.
func (d *Document) ListenerCount(eventType string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[eventType])
}

// TotalListeners reports how many delegated handlers are attached across all
// native event types.
func (d *Document) TotalListeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, regs := range d.listeners {
		total += len(regs)
	}
	return total
}

// Find returns the first element matching the CSS selector, or nil.
func (d *Document) Find(selector string) dom.Element {
	sel := d.doc.Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return &Element{node: sel.Get(0)}
}

// Dispatch synthesizes a native event of the given type targeting target and
// invokes the document's delegated handlers for that type. It returns the
// event so callers can inspect DefaultPrevented.
func (d *Document) Dispatch(eventType string, target dom.Element) *SyntheticEvent {
	evt := &SyntheticEvent{typ: eventType, target: target}

	d.mu.Lock()
	regs := make([]*registration, len(d.listeners[eventType]))
	copy(regs, d.listeners[eventType])
	d.mu.Unlock()

	for _, r := range regs {
		r.h(evt)
	}
	return evt
}

// Element wraps an HTML node.
type Element struct {
	node *html.Node
}

// TagName returns the lower-case tag name.
func (e *Element) TagName() string {
	return e.node.Data
}

// ID returns the id attribute, or "".
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Attr returns the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Attrs returns all attributes in document order.
func (e *Element) Attrs() []dom.Attr {
	out := make([]dom.Attr, 0, len(e.node.Attr))
	for _, a := range e.node.Attr {
		out = append(out, dom.Attr{Name: a.Key, Value: a.Val})
	}
	return out
}

// Parent returns the parent element, or nil at the document root.
func (e *Element) Parent() dom.Element {
	for n := e.node.Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			return &Element{node: n}
		}
	}
	return nil
}

// Value returns the element's current value: for selects, the value of the
// selected option (falling back to the first option); otherwise the value
// attribute.
func (e *Element) Value() string {
	if e.TagName() == "select" {
		return selectValue(e.node)
	}
	v, _ := e.Attr("value")
	return v
}

// selectValue scans option children for the selected one.
func selectValue(sel *html.Node) string {
	first := ""
	firstSeen := false
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "option" {
			continue
		}
		value := optionValue(c)
		if !firstSeen {
			first, firstSeen = value, true
		}
		for _, a := range c.Attr {
			if a.Key == "selected" {
				return value
			}
		}
	}
	return first
}

// optionValue prefers the value attribute, falling back to text content.
func optionValue(opt *html.Node) string {
	for _, a := range opt.Attr {
		if a.Key == "value" {
			return a.Val
		}
	}
	var text strings.Builder
	for c := opt.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(text.String())
}

// SyntheticEvent is a native event synthesized by Dispatch.
type SyntheticEvent struct {
	typ       string
	target    dom.Element
	prevented bool
}

func (e *SyntheticEvent) Type() string        { return e.typ }
func (e *SyntheticEvent) Target() dom.Element { return e.target }

// PreventDefault marks the event's default behavior as suppressed.
func (e *SyntheticEvent) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *SyntheticEvent) DefaultPrevented() bool { return e.prevented }
