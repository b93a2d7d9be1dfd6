package eventbus

// ledger is the set of event names that are allowed to be emitted. Whether a
// name has listeners is independent from whether it is registered. Insertion
// order is preserved for listing. Not goroutine-safe; the Bus serializes
// access to it.
type ledger struct {
	names map[string]struct{}
	order []string
}

func newLedger() *ledger {
	return &ledger{names: make(map[string]struct{})}
}

// register marks event as emittable. Registering twice is a no-op.
func (l *ledger) register(event string) {
	if _, ok := l.names[event]; ok {
		return
	}
	l.names[event] = struct{}{}
	l.order = append(l.order, event)
}

func (l *ledger) isRegistered(event string) bool {
	_, ok := l.names[event]
	return ok
}

// list returns the registered names in insertion order.
func (l *ledger) list() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// unregister removes event and reports whether it was registered.
func (l *ledger) unregister(event string) bool {
	if _, ok := l.names[event]; !ok {
		return false
	}
	delete(l.names, event)
	for i, name := range l.order {
		if name == event {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

func (l *ledger) clear() {
	l.names = make(map[string]struct{})
	l.order = nil
}
