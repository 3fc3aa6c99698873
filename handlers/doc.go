// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the BallotBox API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ElectionHandler: Election CRUD and results retrieval
  - CandidateHandler: Candidate roster management with photo uploads
  - TokenHandler: Token issuance, CSV import, delivery, voter roll
  - VoteHandler: Ballot fetch, vote casting, live results stream
  - StatsHandler: Per-election participation statistics
  - AuthHandler: Admin login and logout

Handlers are created via constructor functions that accept *sql.DB and
Config, plus the domain services they drive:

	voteHandler := handlers.NewVoteHandler(db, cfg, caster, hub)

# Voting Flow

Voters interact through the per-token opaque link they received:

	GET  /api/v1/elections/{uid}/vote/{opaque} → GetBallot
	POST /api/v1/elections/{uid}/vote/{opaque} → CastVote
	GET  /api/v1/elections/{uid}/results/live  → LiveResults (SSE)

Failures on the voting path carry a kind in the error field (NotStarted,
Ended, InvalidToken) so clients can tell a closed window from a bad link.
A spent or unknown token answers identically: the server never confirms
whether a given link ever existed.

# Admin Surface

Everything under /api/v1/admin (except login) requires a bearer token
from Login; middleware.RequireAdmin validates signature, expiry, and the
revocation blocklist.

	POST /api/v1/admin/login
	POST /api/v1/admin/logout
	GET|POST        /api/v1/admin/elections
	GET|PUT|DELETE  /api/v1/admin/elections/{uid}
	GET             /api/v1/admin/elections/{uid}/results
	GET|POST        /api/v1/admin/elections/{uid}/candidates
	PUT|DELETE      /api/v1/admin/elections/{uid}/candidates/{cuid}
	POST            /api/v1/admin/elections/{uid}/tokens
	POST            /api/v1/admin/elections/{uid}/tokens/import
	POST            /api/v1/admin/elections/{uid}/tokens/send
	GET             /api/v1/admin/elections/{uid}/voters
	DELETE          /api/v1/admin/elections/{uid}/voters/{identity}
	GET             /api/v1/admin/stats

Candidate mutations are refused while an election is accepting votes.
*/
package handlers
