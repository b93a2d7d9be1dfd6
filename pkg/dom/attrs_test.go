package dom

import (
	"strings"
	"testing"
)

// stubElement is a minimal Element for exercising the attribute helpers.
type stubElement struct {
	tag    string
	id     string
	attrs  []Attr
	parent Element
}

func (s *stubElement) TagName() string { return s.tag }
func (s *stubElement) ID() string      { return s.id }
func (s *stubElement) Attr(name string) (string, bool) {
	for _, a := range s.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
func (s *stubElement) Attrs() []Attr   { return s.attrs }
func (s *stubElement) Parent() Element { return s.parent }

// valuerElement additionally reports a live value.
type valuerElement struct {
	stubElement
	value string
}

func (v *valuerElement) Value() string { return v.value }

// panickyElement simulates a foreign implementation that fails while being
// read.
type panickyElement struct {
	stubElement
}

func (p *panickyElement) Attrs() []Attr { panic("broken element") }

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"action", "action"},
		{"user-id", "userId"},
		{"order-line-item", "orderLineItem"},
		{"a-b-c", "aBC"},
		{"trailing-", "trailing"},
		{"double--dash", "doubleDash"},
	}
	for _, tt := range tests {
		if got := camelCase(tt.in); got != tt.want {
			t.Errorf("camelCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestActionPayload(t *testing.T) {
	el := &stubElement{
		tag: "button",
		attrs: []Attr{
			{Name: "id", Value: "save-btn"},
			{Name: ActionAttr, Value: "save"},
			{Name: "data-user-id", Value: "42"},
			{Name: "data-mode", Value: "fast"},
			{Name: "class", Value: "btn"},
		},
	}

	p, err := actionPayload(el, nil)
	if err != nil {
		t.Fatalf("actionPayload failed: %v", err)
	}
	if p.Action != "save" {
		t.Errorf("expected action save, got %q", p.Action)
	}
	if len(p.Data) != 2 {
		t.Fatalf("expected 2 data fields, got %v", p.Data)
	}
	// Values stay raw strings; nothing is coerced.
	if p.Data["userId"] != "42" || p.Data["mode"] != "fast" {
		t.Errorf("unexpected data %v", p.Data)
	}
	if _, ok := p.Data["action"]; ok {
		t.Error("the action attribute must not appear in data")
	}
}

func TestActionPayload_EmptyAction(t *testing.T) {
	el := &stubElement{
		tag:   "button",
		attrs: []Attr{{Name: ActionAttr, Value: "  "}},
	}
	if _, err := actionPayload(el, nil); err == nil {
		t.Fatal("expected an error for a blank action value")
	}
}

func TestActionPayload_RecoversPanic(t *testing.T) {
	el := &panickyElement{stubElement{
		tag:   "button",
		attrs: []Attr{{Name: ActionAttr, Value: "save"}},
	}}
	_, err := actionPayload(el, nil)
	if err == nil {
		t.Fatal("expected the panic to surface as an error")
	}
	if !strings.Contains(err.Error(), "panic") {
		t.Errorf("expected a panic error, got %v", err)
	}
}

func TestClosestWithAttr(t *testing.T) {
	root := &stubElement{tag: "div", attrs: []Attr{{Name: ActionAttr, Value: "open"}}}
	mid := &stubElement{tag: "span", parent: root}
	leaf := &stubElement{tag: "b", parent: mid}

	if got := closestWithAttr(leaf, ActionAttr); got != root {
		t.Errorf("expected the root carrier, got %v", got)
	}
	if got := closestWithAttr(leaf, "data-missing"); got != nil {
		t.Errorf("expected nil for an absent attribute, got %v", got)
	}
}

func TestElementValue(t *testing.T) {
	withAttr := &stubElement{
		tag:   "input",
		attrs: []Attr{{Name: "value", Value: "from-attr"}},
	}
	if got := elementValue(withAttr); got != "from-attr" {
		t.Errorf("expected attribute fallback, got %q", got)
	}

	live := &valuerElement{value: "live"}
	if got := elementValue(live); got != "live" {
		t.Errorf("expected the live value, got %q", got)
	}
}
