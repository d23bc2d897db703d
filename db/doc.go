// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles SQL schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is shared by PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).

# Tables

  - poll: question, counters (version, total_votes) and timestamps
  - poll_option: ordered options with their vote counters
  - vote: the ledger, UNIQUE (poll_id, voter_id)
  - vote_attempt: append-only log of vote requests per IP fingerprint

# Relationships

	poll 1──* poll_option
	poll 1──* vote

# Indexes

  - poll.updated_at
  - vote.(poll_id, voter_id) (unique constraint)
  - vote.poll_id
  - vote_attempt.(poll_id, ip_hash, attempted_at)

The MongoDB store creates the equivalent indexes itself.
*/
package db
