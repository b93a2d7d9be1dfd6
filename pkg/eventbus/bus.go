package eventbus

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/uibus/uibus/internal/logging"
	"github.com/uibus/uibus/pkg/debounce"
	"github.com/uibus/uibus/pkg/dom"
)

// Listener handles one emitted payload. The payload is shared by every
// listener of an emission and must be treated as read-only.
type Listener func(ctx context.Context, payload any) error

// Registration declares an emittable event name together with an initial
// listener and optional metadata.
type Registration struct {
	// Event is the event name, conventionally "domain:action".
	Event string
	// Listener is attached to Event. Required.
	Listener Listener
	// Description documents the event. Optional.
	Description string
	// Debounce, when positive, becomes the event's default emission delay.
	Debounce time.Duration
}

// patternEntry is a wildcard listener matched against event names at emit
// time.
type patternEntry struct {
	id      string
	pattern string
	fn      Listener
}

// emitOptions collects per-call emission settings.
type emitOptions struct {
	debounce    time.Duration
	debounceSet bool
}

// EmitOption adjusts a single Emit call.
type EmitOption func(*emitOptions)

// WithDebounce overrides the event's default debounce for this call. A zero
// duration forces immediate dispatch.
func WithDebounce(d time.Duration) EmitOption {
	return func(o *emitOptions) {
		o.debounce = d
		o.debounceSet = true
	}
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithDocument binds a document root so the DOM integration can be enabled.
func WithDocument(doc dom.Document) Option {
	return func(b *Bus) { b.doc = doc }
}

// WithLogger replaces the bus's default component logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bus) { b.log = log }
}

// Bus is an in-process publish/subscribe registry. Event names must be
// registered before they can be emitted; emission fans out concurrently to
// every listener of the name and aggregates their failures back to the
// caller.
//
// A watermill gochannel mirrors every dispatch so external consumers can
// observe the stream without participating in error aggregation.
type Bus struct {
	mu sync.RWMutex

	registry     *registry
	ledger       *ledger
	patterns     []patternEntry
	delays       map[string]time.Duration
	descriptions map[string]string

	pending *debounce.Map
	pubsub  *gochannel.GoChannel

	doc         dom.Document
	integration *dom.Integration

	log    zerolog.Logger
	closed bool
}

// New creates a bus. Collaborators should receive the instance explicitly
// rather than share package state; tests simply build their own.
func New(opts ...Option) *Bus {
	b := &Bus{
		registry:     newRegistry(),
		ledger:       newLedger(),
		delays:       make(map[string]time.Duration),
		descriptions: make(map[string]string),
		pending:      debounce.NewMap(),
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 100,
				Persistent:          false,
			},
			watermill.NopLogger{},
		),
		log: logging.Component("eventbus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterEvents registers a batch of event declarations: each entry marks
// its event name emittable, attaches the listener, and installs the default
// debounce if one is given. The returned listener ids are in input order.
//
// The whole batch is validated before any entry is applied; on a malformed
// entry nothing is registered and an InvalidRegistrationError is returned.
// Registering an already-registered name is additive, not a replacement.
func (b *Bus) RegisterEvents(regs []Registration) ([]string, error) {
	for i, reg := range regs {
		if strings.TrimSpace(reg.Event) == "" {
			return nil, &InvalidRegistrationError{Index: i, Event: reg.Event, Reason: "missing event name"}
		}
		if reg.Listener == nil {
			return nil, &InvalidRegistrationError{Index: i, Event: reg.Event, Reason: "nil listener"}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		b.ledger.register(reg.Event)
		ids = append(ids, b.registry.add(reg.Event, reg.Listener))
		if reg.Debounce > 0 {
			b.delays[reg.Event] = reg.Debounce
		}
		if reg.Description != "" {
			b.descriptions[reg.Event] = reg.Description
		}
		b.log.Debug().Str("event", reg.Event).Msg("event registered")
	}
	return ids, nil
}

// RegisterEvent marks an event name emittable without attaching a listener.
// Registration is idempotent.
func (b *Bus) RegisterEvent(event string) error {
	if strings.TrimSpace(event) == "" {
		return &InvalidRegistrationError{Index: -1, Event: event, Reason: "missing event name"}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ledger.register(event)
	return nil
}

// On attaches a listener to an already-registered event name and returns the
// listener id. Attaching to an unregistered name fails with a
// NotRegisteredError; names enter the ledger only through RegisterEvents,
// RegisterEvent, or a manifest.
func (b *Bus) On(event string, fn Listener) (string, error) {
	if fn == nil {
		return "", &InvalidRegistrationError{Index: -1, Event: event, Reason: "nil listener"}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ledger.isRegistered(event) {
		return "", b.notRegistered(event)
	}
	return b.registry.add(event, fn), nil
}

// OnPattern attaches a wildcard listener invoked for every emission whose
// event name matches the doublestar pattern (for example "dom:*"). Pattern
// listeners run in the same batch as exact listeners, after them. The
// registration gate applies to the emitted name, never to patterns.
func (b *Bus) OnPattern(pattern string, fn Listener) (string, error) {
	if fn == nil {
		return "", &InvalidRegistrationError{Index: -1, Event: pattern, Reason: "nil listener"}
	}
	if !doublestar.ValidatePattern(pattern) {
		return "", &InvalidRegistrationError{Index: -1, Event: pattern, Reason: "invalid pattern"}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := ulid.Make().String()
	b.patterns = append(b.patterns, patternEntry{id: id, pattern: pattern, fn: fn})
	return id, nil
}

// Off detaches the listener with the given id from event. It reports whether
// a listener was removed; unknown events and ids are not errors. A listener
// removed while an emission is in flight still completes that emission.
func (b *Bus) Off(event, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registry.remove(event, id)
}

// OffPattern detaches a wildcard listener by id.
func (b *Bus) OffPattern(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.patterns {
		if p.id == id {
			b.patterns = append(b.patterns[:i], b.patterns[i+1:]...)
			return true
		}
	}
	return false
}

// Emit dispatches payload to every listener registered for event at the
// moment the call begins. Emitting an unregistered name fails with a
// NotRegisteredError before any listener runs. A registered name with no
// listeners succeeds immediately.
//
// All listeners are started before any is waited on and every one of them is
// invoked exactly once, even when a sibling fails; when at least one fails,
// Emit returns the first failure after the batch has finished.
//
// When the event has a default debounce, or WithDebounce sets one for this
// call, Emit returns nil as soon as the request is accepted: only the most
// recent payload within the delay window is dispatched when the timer fires,
// and delivery failures are logged rather than returned.
func (b *Bus) Emit(ctx context.Context, event string, payload any, opts ...EmitOption) error {
	var o emitOptions
	for _, opt := range opts {
		opt(&o)
	}

	b.mu.RLock()
	if !b.ledger.isRegistered(event) {
		err := b.notRegistered(event)
		b.mu.RUnlock()
		return err
	}
	delay := b.delays[event]
	if o.debounceSet {
		delay = o.debounce
	}
	b.mu.RUnlock()

	if delay > 0 {
		// The caller's context may be long gone by the time the timer
		// fires, so the deferred dispatch runs on the background context.
		b.pending.Call(event, delay, func() {
			if err := b.dispatchNow(context.Background(), event, payload, false); err != nil {
				b.log.Error().Err(err).Str("event", event).Msg("debounced dispatch failed")
			}
		})
		return nil
	}
	return b.dispatchNow(ctx, event, payload, false)
}

// EmitSeq behaves like Emit without debounce, but invokes listeners
// sequentially in registration order in the calling goroutine. Use it when
// strict ordering between listener bodies matters more than latency.
func (b *Bus) EmitSeq(ctx context.Context, event string, payload any) error {
	b.mu.RLock()
	registered := b.ledger.isRegistered(event)
	var err error
	if !registered {
		err = b.notRegistered(event)
	}
	b.mu.RUnlock()
	if err != nil {
		return err
	}
	return b.dispatchNow(ctx, event, payload, true)
}

// dispatchNow snapshots the listener set and fans out. Pattern listeners are
// appended after exact listeners. The mirror stream sees every dispatch,
// including ones with zero listeners.
func (b *Bus) dispatchNow(ctx context.Context, event string, payload any, sequential bool) error {
	b.mu.RLock()
	snapshot := b.registry.snapshot(event)
	for _, p := range b.patterns {
		if ok, _ := doublestar.Match(p.pattern, event); ok {
			snapshot = append(snapshot, entry{id: p.id, fn: p.fn})
		}
	}
	b.mu.RUnlock()

	b.mirror(event, payload, len(snapshot))

	if len(snapshot) == 0 {
		return nil
	}

	b.log.Debug().Str("event", event).Int("listeners", len(snapshot)).Msg("dispatching")
	if sequential {
		return dispatchSeq(ctx, event, snapshot, payload)
	}
	return dispatch(ctx, event, snapshot, payload)
}

// mirror publishes a copy of the emission to the watermill channel. The
// payload is a best-effort JSON encoding; values that cannot be marshalled
// produce an empty message body.
func (b *Bus) mirror(event string, payload any, listeners int) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("event", event)
	msg.Metadata.Set("listeners", strconv.Itoa(listeners))
	if err := b.pubsub.Publish(event, msg); err != nil {
		b.log.Debug().Err(err).Str("event", event).Msg("mirror publish failed")
	}
}

// Stream subscribes to the mirror stream for one event name. Messages carry
// the event name in metadata and a best-effort JSON payload; consuming the
// stream never affects dispatch.
func (b *Bus) Stream(ctx context.Context, event string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, event)
}

// PubSub exposes the underlying watermill channel for advanced consumers
// such as routers or middleware.
func (b *Bus) PubSub() *gochannel.GoChannel {
	return b.pubsub
}

// IsEventRegistered reports whether event may be emitted.
func (b *Bus) IsEventRegistered(event string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.isRegistered(event)
}

// RegisteredEvents returns the registered names in registration order.
func (b *Bus) RegisteredEvents() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.list()
}

// ListenerCount returns the number of listeners attached to event.
func (b *Bus) ListenerCount(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.registry.count(event)
}

// HasListeners reports whether event has at least one listener.
func (b *Bus) HasListeners(event string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.registry.has(event)
}

// EventDescription returns the description recorded for event, if any.
func (b *Bus) EventDescription(event string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.descriptions[event]
}

// DescribeEvent records a human-readable description for event.
func (b *Bus) DescribeEvent(event, description string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.descriptions[event] = description
}

// SetDefaultDebounce installs a default emission delay for event. A
// non-positive delay removes the default.
func (b *Bus) SetDefaultDebounce(event string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d <= 0 {
		delete(b.delays, event)
		return
	}
	b.delays[event] = d
}

// Clear empties the ledger and the listener registry together, cancels
// pending debounced emissions, and drops debounce defaults. Pattern
// listeners survive; they are not tied to event names.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ledger.clear()
	b.registry.clear()
	b.delays = make(map[string]time.Duration)
	b.descriptions = make(map[string]string)
	b.pending.CancelAll()
}

// ClearEvent removes event's ledger entry, listener bucket, debounce default
// and any pending debounced emission. It reports whether the event was known
// in any of those places.
func (b *Bus) ClearEvent(event string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	registered := b.ledger.unregister(event)
	hadBucket := b.registry.clearOne(event)
	delete(b.delays, event)
	delete(b.descriptions, event)
	b.pending.Cancel(event)
	return registered || hadBucket
}

// EnableDOMIntegration lazily constructs the DOM integration bound to the
// configured document and connects it. Without a document (for example in a
// non-UI runtime) it is a no-op reporting false. Re-enabling while connected
// is a no-op reporting true.
func (b *Bus) EnableDOMIntegration() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return false
	}
	if b.integration == nil {
		b.integration = dom.NewIntegration(b.doc, func(ctx context.Context, event string, payload any) error {
			return b.Emit(ctx, event, payload)
		})
	}
	b.integration.Connect()
	return true
}

// DisableDOMIntegration disconnects the DOM integration if one is active.
func (b *Bus) DisableDOMIntegration() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.integration != nil {
		b.integration.Disconnect()
	}
}

// DOMIntegrationEnabled reports whether the DOM integration is connected.
func (b *Bus) DOMIntegrationEnabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.integration != nil && b.integration.Connected()
}

// Close stops pending debounce timers, disconnects the DOM integration and
// closes the mirror channel. Close is idempotent. Emitting on a closed bus
// dispatches to listeners but the mirror publish fails silently.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.pending.CancelAll()
	if b.integration != nil {
		b.integration.Disconnect()
	}
	b.mu.Unlock()

	return b.pubsub.Close()
}

// notRegistered builds the error for an unknown event name, including a
// did-you-mean suggestion. Callers must hold at least a read lock.
func (b *Bus) notRegistered(event string) error {
	return &NotRegisteredError{Event: event, Suggestion: suggest(event, b.ledger.list())}
}
