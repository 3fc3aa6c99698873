// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting enforces the voting window and records votes.

# Window Guard

CheckWindow takes the election bounds and an explicit now, so handlers
and tests inject their own clocks:

	switch voting.CheckWindow(e.StartAt, e.EndAt, time.Now()) {
	case voting.WindowNotStarted: // 403 NotStarted
	case voting.WindowEnded:      // 403 Ended
	}

Both the ballot-fetch and cast paths re-check the window at request
time. A link sent before an election opens works once it opens, and
stops working the instant it ends.

# Casting

Caster.Cast runs the precondition chain in a fixed order so the caller
can tell "election not open" from "already voted" from "bad link":
election exists, window open, candidate belongs to the election, opaque
value resolves to a token, token redeems. Redemption and the vote insert
share one transaction; concurrent casts with the same token settle to
exactly one vote. Casts with different tokens never contend.

After commit, the tally is recomputed and published to the election's
live channel.
*/
package voting
