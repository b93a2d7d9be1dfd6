package htmldom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uibus/uibus/pkg/dom"
)

const fixture = `<html><body>
	<div id="wrap" class="outer" data-action="open">
		<button id="btn" data-user-id="7">Go</button>
	</div>
	<select id="pick">
		<option value="a">A</option>
		<option value="b" selected>B</option>
	</select>
	<select id="first-wins">
		<option value="x">X</option>
		<option value="y">Y</option>
	</select>
</body></html>`

func TestParseAndFind(t *testing.T) {
	doc, err := ParseString(fixture)
	require.NoError(t, err)

	btn := doc.Find("#btn")
	require.NotNil(t, btn)
	assert.Equal(t, "button", btn.TagName())
	assert.Equal(t, "btn", btn.ID())

	assert.Nil(t, doc.Find("#missing"))
}

func TestElementAttrs(t *testing.T) {
	doc, err := ParseString(fixture)
	require.NoError(t, err)

	btn := doc.Find("#btn")
	v, ok := btn.Attr("data-user-id")
	require.True(t, ok)
	assert.Equal(t, "7", v)

	_, ok = btn.Attr("data-absent")
	assert.False(t, ok)

	attrs := btn.Attrs()
	require.Len(t, attrs, 2)
	assert.Equal(t, dom.Attr{Name: "id", Value: "btn"}, attrs[0])
}

func TestElementParentChain(t *testing.T) {
	doc, err := ParseString(fixture)
	require.NoError(t, err)

	btn := doc.Find("#btn")
	parent := btn.Parent()
	require.NotNil(t, parent)
	assert.Equal(t, "wrap", parent.ID())

	// Walking to the top terminates with nil.
	var depth int
	for el := btn; el != nil; el = el.Parent() {
		depth++
		require.Less(t, depth, 20, "parent chain should terminate")
	}
}

func TestSelectValue(t *testing.T) {
	doc, err := ParseString(fixture)
	require.NoError(t, err)

	picked := doc.Find("#pick").(*Element)
	assert.Equal(t, "b", picked.Value())

	// Without an explicit selection the first option wins.
	first := doc.Find("#first-wins").(*Element)
	assert.Equal(t, "x", first.Value())
}

func TestAddEventListenerAndDispatch(t *testing.T) {
	doc, err := ParseString(fixture)
	require.NoError(t, err)

	var seen []string
	remove := doc.AddEventListener("click", func(evt dom.Event) {
		seen = append(seen, evt.Target().ID())
	})
	require.Equal(t, 1, doc.ListenerCount("click"))

	evt := doc.Dispatch("click", doc.Find("#btn"))
	assert.Equal(t, "click", evt.Type())
	assert.Equal(t, []string{"btn"}, seen)
	assert.False(t, evt.DefaultPrevented())

	evt.PreventDefault()
	assert.True(t, evt.DefaultPrevented())

	remove()
	assert.Equal(t, 0, doc.ListenerCount("click"))
	doc.Dispatch("click", doc.Find("#btn"))
	assert.Len(t, seen, 1, "removed handler must not fire")
}

func TestRemoverIsExact(t *testing.T) {
	doc, err := ParseString(fixture)
	require.NoError(t, err)

	var aCount, bCount int
	removeA := doc.AddEventListener("change", func(dom.Event) { aCount++ })
	doc.AddEventListener("change", func(dom.Event) { bCount++ })
	require.Equal(t, 2, doc.ListenerCount("change"))

	removeA()
	removeA() // second call is a harmless no-op
	require.Equal(t, 1, doc.ListenerCount("change"))

	doc.Dispatch("change", doc.Find("#pick"))
	assert.Equal(t, 0, aCount)
	assert.Equal(t, 1, bCount)
}

func TestTotalListeners(t *testing.T) {
	doc, err := ParseString(fixture)
	require.NoError(t, err)

	r1 := doc.AddEventListener("click", func(dom.Event) {})
	r2 := doc.AddEventListener("submit", func(dom.Event) {})
	assert.Equal(t, 2, doc.TotalListeners())

	r1()
	r2()
	assert.Equal(t, 0, doc.TotalListeners())
}
