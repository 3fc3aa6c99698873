// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types.

# Domain Types

Core entities stored in the database:

  - Election: voting contest with an optional [start_at, end_at] window
  - Candidate: choice within an election, ordered by insertion
  - VoteToken: single-use voting credential tied to one voter identity
  - Vote: anonymous ballot referencing an election and candidate

Vote deliberately carries no reference to VoteToken or the voter. The
token-redemption event enforces one vote per voter; the vote row itself
reveals nothing about who cast it.

# Identifiers

All public identifiers are UUID strings. Raw token values never appear
in JSON output (the VoteToken.Value field is tagged "-"); clients only
ever see the HMAC-derived opaque form.

# Tally Types

CandidateTally and TallyPayload are shared by the admin results
endpoint, the live results stream, and the aggregator.
*/
package models
