// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the PulsePoll API.

# Handler Types

  - PollHandler: create and read polls
  - VotingHandler: vote submission through the admission pipeline
  - EventsHandler: live update streams (SSE and WebSocket)

Handlers are created via constructor functions that take the components
they use:

	pollHandler := handlers.NewPollHandler(st)
	votingHandler := handlers.NewVotingHandler(pipeline)

# Poll Creation

	POST /polls {"question": "...", "options": ["...", "..."]}

The question is trimmed and must be 1-500 characters. Options are trimmed,
blank ones are dropped, and 2-20 must remain. The response is the new poll
plus share_path ("/?poll=<id>").

# Voting

	POST /polls/{id}/vote {"option_id": "..."}

Voters are anonymous. The voter_id cookie identifies a browser; a new ID
is minted when the cookie is missing, and the cookie is refreshed for a
year on every accepted vote.

# Error Responses

	400 malformed body, bad option_id, or option not in poll
	404 poll not found
	409 voter already voted on this poll
	429 too many vote attempts from this address
	503 storage unavailable

Duplicate and rate-limited votes are expected outcomes and are not logged
as errors.

# Live Updates

	GET /polls/{id}/events  text/event-stream, "data: <RFC3339 time>"
	GET /polls/{id}/ws      same markers as WebSocket text messages

A marker is sent after every accepted vote. Clients re-fetch the poll when
they receive one. Streams end when the client disconnects or the server
shuts down.
*/
package handlers
