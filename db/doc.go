// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - admin: admin accounts (bcrypt password hashes)
  - admin_token_blocklist: revoked admin JWT ids
  - election: contest metadata and voting window
  - candidate: choices per election (position gives insertion order)
  - vote_token: single-use voting credentials
  - vote: anonymous ballots

# Relationships

	election 1──* candidate
	election 1──* vote_token
	election 1──* vote
	candidate 1──* vote

All foreign keys use ON DELETE CASCADE, so deleting an election removes
its candidates, tokens, and votes in one statement.

# Constraints

  - vote_token.token is globally unique (primary key)
  - vote_token.(election_id, voter) is unique: one token per voter per
    election
  - vote has no column referencing vote_token or a voter identity
*/
package db
