// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live computes election tallies and broadcasts them to subscribers.

# Tallies

Tally counts votes per candidate directly from the vote table on every
call. There is no cache and no incremental counter to drift out of sync
with the ledger. Candidates appear in insertion order, including those
with zero votes.

# Broadcasting

Hub keeps an in-process registry of subscribers keyed by election id.
After each successful vote cast, the ledger recomputes the tally and
publishes it to that election's channel only.

The published tally always reflects at least the cast that triggered it,
but concurrent casts may reach subscribers in any relative order - the
stream is a sequence of consistent snapshots, not an ordered event log.

Delivery is best-effort. Publish never blocks, a subscriber whose buffer
is full loses that update, and nothing is replayed after a disconnect; a
reconnecting client fetches the current tally instead. The stream is
exposed over HTTP as server-sent events.
*/
package live
