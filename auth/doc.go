// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the anonymous identity primitives used by vote admission.

# Voter Identity

Voters are identified by an opaque token kept in a long-lived cookie:

	voterID := auth.ResolveVoterID(cookieValue)

An existing well-formed token is reused as-is; otherwise a fresh UUID is
minted. The token is a sticky correlation key only. Uniqueness of votes is
enforced by the vote ledger, not by the token.

# IP Fingerprints

For privacy-preserving abuse detection:

	fp := auth.FingerprintIP(ipAddress, salt)

Returns the hex HMAC-SHA256 of the address keyed with the server salt.
Raw addresses are never stored.

# ID Generation

Random URL-safe IDs for polls and options:

	pollID, err := auth.GenerateID(6)   // 8 characters
	optionID, err := auth.GenerateID(8) // 11 characters

IDs are not sequential and cannot be guessed from neighbouring polls.
*/
package auth
