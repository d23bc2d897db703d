// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package admission decides whether a vote is counted.

A vote passes these gates in order, stopping at the first failure:

 1. option ID is well formed (ErrValidation)
 2. poll exists and owns the option (store.ErrPollNotFound, store.ErrOptionNotFound)
 3. the attempt is logged and the rate limit checked (ErrRateLimited)
 4. the ledger accepts the (poll, voter) pair (store.ErrDuplicateVote)
 5. the aggregate counters are bumped atomically (store.ErrOptionNotFound)
 6. observers of the poll are signalled and the vote event is published

The ledger write happens before the counters change, so a duplicate can
never be counted. Rate-limited and duplicate votes are routine outcomes and
are only logged at debug level.

Usage:

	p := admission.New(st, limiter, notifier, publisher, m, cfg.IPHashSalt)
	res, err := p.Submit(ctx, admission.Request{
		PollID:     pollID,
		OptionID:   req.OptionID,
		VoterToken: cookieValue,
		ClientIP:   middleware.GetClientIP(r),
	})
*/
package admission
