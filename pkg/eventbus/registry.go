package eventbus

import "github.com/oklog/ulid/v2"

// entry pairs a listener with its generated id.
type entry struct {
	id string
	fn Listener
}

// registry maps event names to ordered listener buckets. A name is present
// as a key only while it has at least one listener. The registry is not
// goroutine-safe; the Bus serializes access to it.
type registry struct {
	buckets map[string][]entry
}

func newRegistry() *registry {
	return &registry{buckets: make(map[string][]entry)}
}

// add appends fn to the bucket for event, creating the bucket if absent, and
// returns the generated listener id.
func (r *registry) add(event string, fn Listener) string {
	id := ulid.Make().String()
	r.buckets[event] = append(r.buckets[event], entry{id: id, fn: fn})
	return id
}

// remove deletes the listener with the given id from event's bucket,
// dropping the bucket entirely when it empties. It reports whether anything
// was removed; unknown events and ids are not errors.
func (r *registry) remove(event, id string) bool {
	bucket, ok := r.buckets[event]
	if !ok {
		return false
	}
	for i, e := range bucket {
		if e.id != id {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(r.buckets, event)
		} else {
			r.buckets[event] = bucket
		}
		return true
	}
	return false
}

func (r *registry) count(event string) int {
	return len(r.buckets[event])
}

func (r *registry) has(event string) bool {
	return r.count(event) > 0
}

// snapshot copies event's bucket so dispatch iteration is unaffected by
// adds or removes issued while the emission is in flight.
func (r *registry) snapshot(event string) []entry {
	bucket := r.buckets[event]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]entry, len(bucket))
	copy(out, bucket)
	return out
}

func (r *registry) clear() {
	r.buckets = make(map[string][]entry)
}

// clearOne removes event's bucket and reports whether it existed.
func (r *registry) clearOne(event string) bool {
	if _, ok := r.buckets[event]; !ok {
		return false
	}
	delete(r.buckets, event)
	return true
}
