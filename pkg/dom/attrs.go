package dom

import (
	"fmt"
	"strings"
)

// dataPrefix is the declarative attribute namespace.
const dataPrefix = "data-"

// actionPayload builds the dom:action payload from el's attributes. It fails
// when the action value is empty, and converts panics from foreign Element
// implementations into errors so delegation never crashes the native
// dispatch.
func actionPayload(el Element, evt Event) (p ActionPayload, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading element attributes: panic: %v", r)
		}
	}()

	action, ok := el.Attr(ActionAttr)
	if !ok || strings.TrimSpace(action) == "" {
		return ActionPayload{}, fmt.Errorf("element %q has an empty %s attribute", el.TagName(), ActionAttr)
	}

	data := make(map[string]string)
	for _, a := range el.Attrs() {
		if a.Name == ActionAttr || !strings.HasPrefix(a.Name, dataPrefix) {
			continue
		}
		data[camelCase(strings.TrimPrefix(a.Name, dataPrefix))] = a.Value
	}

	return ActionPayload{
		Action:        action,
		Data:          data,
		Element:       el,
		OriginalEvent: evt,
	}, nil
}

// camelCase converts a kebab-case attribute suffix to camelCase:
// "user-id" becomes "userId", "order-line-item" becomes "orderLineItem".
func camelCase(s string) string {
	parts := strings.Split(s, "-")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// closestWithAttr walks from el up the ancestor chain to the nearest element
// carrying the named attribute, or nil.
func closestWithAttr(el Element, name string) Element {
	for cur := el; cur != nil; cur = cur.Parent() {
		if _, ok := cur.Attr(name); ok {
			return cur
		}
	}
	return nil
}

// elementValue reads an element's current value: a live value when the
// element implements Valuer, otherwise its value attribute.
func elementValue(el Element) string {
	if v, ok := el.(Valuer); ok {
		return v.Value()
	}
	value, _ := el.Attr("value")
	return value
}
