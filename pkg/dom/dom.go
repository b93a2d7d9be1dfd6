// Package dom bridges native UI input events into bus emissions using event
// delegation: one handler per tracked native event type is attached at a
// document root, and matched elements' declarative data attributes become
// the emitted payload.
package dom

import (
	"context"
	"time"
)

// Native event types the integration delegates.
const (
	Click   = "click"
	Change  = "change"
	Keydown = "keydown"
	Submit  = "submit"
)

// Synthetic bus event names produced by the integration. They must be
// registered on the bound bus before Connect is useful; the integration
// never registers them itself.
const (
	ActionEvent       = "dom:action"
	ActionErrorEvent  = "dom:action:error"
	FormChangeEvent   = "form:change"
	ReportChangeEvent = "seller-report:change"
)

// ActionAttr is the attribute whose value becomes the emitted action. Every
// other data-* attribute on the same element becomes a payload field.
const ActionAttr = "data-action"

// ReportFormAttr flags a container whose nested inputs emit
// seller-report:change on change events.
const ReportFormAttr = "data-report-form"

// SelectIDSuffix marks select-like elements whose change events emit
// form:change.
const SelectIDSuffix = "-select"

// ChangeDebounce is the trailing delay applied to the two change-event
// paths, so rapid-fire changes on one field do not flood the bus.
const ChangeDebounce = 150 * time.Millisecond

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a read-only view of a document element.
type Element interface {
	// TagName returns the lower-case tag name.
	TagName() string
	// ID returns the element's id attribute, or "".
	ID() string
	// Attr returns the named attribute and whether it is present.
	Attr(name string) (string, bool)
	// Attrs returns all attributes in document order.
	Attrs() []Attr
	// Parent returns the parent element, or nil at the root.
	Parent() Element
}

// Valuer is implemented by elements that carry a current input value, such
// as selects and text inputs.
type Valuer interface {
	Value() string
}

// Event is a native event delivered to a delegated handler.
type Event interface {
	Type() string
	Target() Element
	// PreventDefault suppresses the default native behavior, most notably
	// form submission. The integration never calls it; listeners may.
	PreventDefault()
	DefaultPrevented() bool
}

// Handler receives native events from a Document.
type Handler func(Event)

// Document is the root node the integration delegates from.
// AddEventListener returns a remover that detaches exactly the handler it
// added, enabling symmetric teardown.
type Document interface {
	AddEventListener(eventType string, h Handler) (remove func())
}

// EmitFunc delivers a synthetic event to the bus the integration is bound
// to.
type EmitFunc func(ctx context.Context, event string, payload any) error

// ActionPayload accompanies dom:action emissions. Data holds the element's
// data-* attributes (minus data-action) with kebab-case names converted to
// camelCase; values are raw strings, never coerced.
type ActionPayload struct {
	Action        string            `json:"action"`
	Data          map[string]string `json:"data"`
	Element       Element           `json:"-"`
	OriginalEvent Event             `json:"-"`
}

// ActionErrorPayload accompanies dom:action:error emissions, produced when
// building an action payload fails.
type ActionErrorPayload struct {
	Err           error   `json:"-"`
	Target        Element `json:"-"`
	OriginalEvent Event   `json:"-"`
}

// ChangePayload accompanies form:change and seller-report:change emissions.
type ChangePayload struct {
	Value         string  `json:"value"`
	Element       Element `json:"-"`
	OriginalEvent Event   `json:"-"`
}
