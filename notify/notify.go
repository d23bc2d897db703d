// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"sync"
)

// Notifier wakes observers of a poll when its aggregate changes.
// Signals carry no payload; observers re-read the poll after waking.
type Notifier struct {
	mu      sync.Mutex
	signals map[string]*signal
}

// signal is a generation counter plus a channel that is closed and
// replaced on every change. Closing wakes every current waiter at once.
type signal struct {
	mu  sync.Mutex
	gen uint64
	ch  chan struct{}
}

func New() *Notifier {
	return &Notifier{signals: make(map[string]*signal)}
}

// get returns the poll's signal, creating it on first reference
func (n *Notifier) get(pollID string) *signal {
	n.mu.Lock()
	defer n.mu.Unlock()

	s, ok := n.signals[pollID]
	if !ok {
		s = &signal{ch: make(chan struct{})}
		n.signals[pollID] = s
	}
	return s
}

// Signal wakes everyone currently waiting on pollID
func (n *Notifier) Signal(pollID string) {
	s := n.get(pollID)

	s.mu.Lock()
	s.gen++
	close(s.ch)
	s.ch = make(chan struct{})
	s.mu.Unlock()
}

// Subscribe starts observing pollID from its current generation.
// Changes that happen after Subscribe returns are never missed, even if
// they land while the caller is not inside Wait.
func (n *Notifier) Subscribe(pollID string) *Subscription {
	s := n.get(pollID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return &Subscription{sig: s, seen: s.gen}
}

// AwaitChange blocks until the next change to pollID or until ctx ends.
// A change that happened before the call does not count.
func (n *Notifier) AwaitChange(ctx context.Context, pollID string) error {
	return n.Subscribe(pollID).Wait(ctx)
}

// Polls reports how many polls have a signal registered
func (n *Notifier) Polls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.signals)
}

// Subscription remembers the last generation its owner observed.
// It is not safe for concurrent use; give each observer its own.
type Subscription struct {
	sig  *signal
	seen uint64
}

// Wait returns once the poll has changed since the last Wait (or since
// Subscribe), or ctx.Err() when ctx is done. Several changes in between
// collapse into one wake-up.
func (sub *Subscription) Wait(ctx context.Context) error {
	for {
		sub.sig.mu.Lock()
		gen, ch := sub.sig.gen, sub.sig.ch
		sub.sig.mu.Unlock()

		if gen != sub.seen {
			sub.seen = gen
			return nil
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
