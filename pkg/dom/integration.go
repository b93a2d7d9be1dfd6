package dom

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/uibus/uibus/internal/logging"
	"github.com/uibus/uibus/pkg/debounce"
)

// nativeEvents are the event types Connect delegates, one handler each.
var nativeEvents = []string{Click, Change, Keydown, Submit}

// Integration attaches delegated handlers for the tracked native event types
// to a document root and translates matched elements' declarative attributes
// into bus emissions. It is either connected or disconnected; both
// transitions are idempotent and teardown is exactly symmetric with setup.
type Integration struct {
	mu        sync.Mutex
	doc       Document
	emit      EmitFunc
	removers  map[string]func()
	pending   *debounce.Map
	log       zerolog.Logger
	connected bool
}

// NewIntegration builds a disconnected integration bound to doc that emits
// through emit.
func NewIntegration(doc Document, emit EmitFunc) *Integration {
	return &Integration{
		doc:      doc,
		emit:     emit,
		removers: make(map[string]func()),
		pending:  debounce.NewMap(),
		log:      logging.Component("dom"),
	}
}

// Connect registers exactly one delegated handler per tracked native event
// type on the root. Calling Connect while connected is a no-op.
func (i *Integration) Connect() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.connected {
		return
	}
	for _, typ := range nativeEvents {
		i.removers[typ] = i.doc.AddEventListener(typ, i.handler(typ))
	}
	i.connected = true
	i.log.Debug().Int("handlers", len(i.removers)).Msg("connected")
}

// Disconnect removes exactly the handlers Connect added and cancels pending
// debounced change emissions. Calling Disconnect while disconnected is a
// no-op.
func (i *Integration) Disconnect() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.connected {
		return
	}
	for typ, remove := range i.removers {
		remove()
		delete(i.removers, typ)
	}
	i.pending.CancelAll()
	i.connected = false
	i.log.Debug().Msg("disconnected")
}

// Connected reports the connection state.
func (i *Integration) Connected() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.connected
}

func (i *Integration) handler(typ string) Handler {
	return func(evt Event) {
		i.handle(typ, evt)
	}
}

// handle implements the delegation algorithm for one native event. Failures
// never propagate into the native dispatch: payload-construction faults
// become dom:action:error emissions, bus failures are logged.
func (i *Integration) handle(typ string, evt Event) {
	target := evt.Target()
	if target == nil {
		return
	}

	actionEl := closestWithAttr(target, ActionAttr)

	// The two non-action change patterns apply only when no ancestor
	// carries an action attribute.
	if typ == Change && actionEl == nil {
		i.handleChange(evt, target)
		return
	}
	if actionEl == nil {
		return
	}

	payload, err := actionPayload(actionEl, evt)
	if err != nil {
		i.emitSafe(ActionErrorEvent, ActionErrorPayload{
			Err:           err,
			Target:        target,
			OriginalEvent: evt,
		})
		return
	}
	i.emitSafe(ActionEvent, payload)
}

// handleChange covers select-like elements and report-form containers. Both
// paths are debounced per synthetic event name so only the most recent
// change within the window is emitted.
func (i *Integration) handleChange(evt Event, target Element) {
	if strings.HasSuffix(target.ID(), SelectIDSuffix) {
		payload := ChangePayload{Value: elementValue(target), Element: target, OriginalEvent: evt}
		i.pending.Call(FormChangeEvent, ChangeDebounce, func() {
			i.emitSafe(FormChangeEvent, payload)
		})
		return
	}
	if closestWithAttr(target, ReportFormAttr) != nil {
		payload := ChangePayload{Value: elementValue(target), Element: target, OriginalEvent: evt}
		i.pending.Call(ReportChangeEvent, ChangeDebounce, func() {
			i.emitSafe(ReportChangeEvent, payload)
		})
	}
}

// emitSafe delivers to the bus without letting a failure escape into the
// native event loop.
func (i *Integration) emitSafe(event string, payload any) {
	if err := i.emit(context.Background(), event, payload); err != nil {
		i.log.Error().Err(err).Str("event", event).Msg("emission from delegation failed")
	}
}
