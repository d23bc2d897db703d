// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreatePollRequest: question, options
  - VoteRequest: option_id

# Response Types

  - CreatePollResponse: the poll snapshot plus share_path
  - StatusResponse: service status for GET /
  - ErrorResponse: error, message

# Domain Types

  - Poll: question, ordered options, total_votes, version, timestamps
  - Option: id, text, votes
  - Vote: one per (poll, voter); immutable once admitted
  - VoteAttempt: one per vote request, used for rate limiting
  - VoteEvent: exported after admission

Voter IDs and IP hashes are tagged json:"-" and never leave the server.
The bson tags describe the MongoDB document layout used by the store.
*/
package models
