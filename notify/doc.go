// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify provides the per-poll change signal behind live updates.

The notifier is edge-triggered: a waiter that arrives after a change only
wakes on the next one. Any number of goroutines may wait on the same poll;
waiting holds no lock, and a cancelled context releases the waiter.

Event streams subscribe once and wait in a loop:

	sub := notifier.Subscribe(pollID)
	for {
		if err := sub.Wait(ctx); err != nil {
			return // client went away
		}
		// write a marker; the client re-fetches the poll
	}

State is in-process only and is never authoritative. Losing it delays a
live update but cannot corrupt a poll.
*/
package notify
