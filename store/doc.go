// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists polls, the vote ledger and the vote attempt log.

# Backends

  - SQLStore: PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite)
  - MongoStore: MongoDB, one document per poll with embedded options

Open picks the backend from the configured database type:

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

# Guarantees

  - RecordVote admits at most one vote per (poll, voter), even under
    concurrent submissions. Losers get ErrDuplicateVote.
  - ApplyVote increments the option, the total and the version in one
    atomic step and returns the snapshot written by that step.
  - GetPoll never observes a partially applied vote.
  - Options are returned in creation order.

# Errors

  - ErrPollNotFound, ErrOptionNotFound: the target does not exist
  - ErrDuplicateVote: the voter already voted on the poll
  - ErrUnavailable: wraps every driver failure; test with errors.Is
*/
package store
