package eventbus

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// dispatch fans payload out to every listener in the snapshot. All listeners
// are started, in snapshot order, before any is waited on; the call returns
// only after every listener has finished. When one or more listeners fail,
// the first failure observed by the group is returned — siblings still run
// to completion.
func dispatch(ctx context.Context, event string, snapshot []entry, payload any) error {
	g := new(errgroup.Group)
	for _, e := range snapshot {
		e := e
		g.Go(func() error {
			return invoke(ctx, event, e, payload)
		})
	}
	return g.Wait()
}

// dispatchSeq invokes every listener in snapshot order in the calling
// goroutine. Every listener runs even when an earlier one fails; the first
// failure is returned.
func dispatchSeq(ctx context.Context, event string, snapshot []entry, payload any) error {
	var first error
	for _, e := range snapshot {
		if err := invoke(ctx, event, e, payload); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// invoke runs a single listener, converting a panic into an error so one
// misbehaving listener cannot take down its siblings or the caller.
func invoke(ctx context.Context, event string, e entry, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ListenerError{Event: event, ListenerID: e.id, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if lerr := e.fn(ctx, payload); lerr != nil {
		return &ListenerError{Event: event, ListenerID: e.id, Err: lerr}
	}
	return nil
}
