/*
Package eventbus provides an in-process publish/subscribe registry that maps
string event names to ordered listener lists, with registration gating,
concurrent dispatch, failure aggregation and optional per-event debouncing.

# Architecture

The bus composes three small pieces behind one facade: a listener registry
(ordered buckets keyed by event name), a registration ledger (the set of
names allowed to be emitted) and a dispatcher. A watermill gochannel mirrors
every dispatch so external consumers can observe emissions as messages
without taking part in error aggregation.

# Registration gating

An event name must be registered before it can be emitted. Emitting an
unregistered name fails with a NotRegisteredError before any listener runs;
the error carries a did-you-mean suggestion when a registered name is close
by edit distance. A registered name with zero listeners emits successfully
as a validated no-op.

# Basic usage

	bus := eventbus.New()
	defer bus.Close()

	ids, err := bus.RegisterEvents([]eventbus.Registration{
		{Event: "cart:add", Listener: onCartAdd},
		{Event: "search:query", Listener: onSearch, Debounce: 150 * time.Millisecond},
	})
	if err != nil {
		return err
	}

	if err := bus.Emit(ctx, "cart:add", item); err != nil {
		// first listener failure, or NotRegisteredError
	}

	bus.Off("cart:add", ids[0])

# Dispatch semantics

Emit snapshots the listener list at call time: listeners added while the
emission is in flight are not part of the batch, and listeners removed while
it is in flight still run. All listeners start, in registration order, before
any is waited on, and every one is invoked exactly once per emission — a
failing listener never prevents a sibling from running. When at least one
listener fails, Emit returns the first failure after the batch finishes.
EmitSeq trades concurrency for strict sequential ordering of listener bodies.

# Debouncing

A default delay per event name (Registration.Debounce or SetDefaultDebounce)
or a per-call WithDebounce option turns Emit into a trailing-edge debounce:
only the most recent payload within the window is dispatched when the timer
fires, and the accepted calls return nil immediately.

# Wildcard listeners

OnPattern attaches listeners matched against event names with doublestar
patterns ("dom:*", "*:change"). Pattern listeners join the batch after exact
listeners.

# DOM integration

A bus constructed with WithDocument can bridge native UI input events into
emissions via EnableDOMIntegration; see package
github.com/uibus/uibus/pkg/dom.

# Thread safety

All operations are safe for concurrent use. Listener bodies run outside the
bus's locks, so listeners may freely call back into the bus.
*/
package eventbus
