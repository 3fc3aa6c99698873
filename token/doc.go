// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package token implements the voting-token lifecycle: issuance, one-way
obfuscation, delivery tracking, and atomic redemption.

# Obfuscation

Raw token values never appear in URLs, emails, or SMS messages. The
voter-facing form is a keyed hash:

	opaque := token.Obfuscate(secret, value)  // hex HMAC-SHA256

Because the hash is one-way, there is no reverse-lookup table to leak.
Recovery re-hashes the election's outstanding tokens until one matches:

	value, err := store.FindByObfuscated(electionID, opaque)

That scan is linear in the number of outstanding tokens. It is a
deliberate trade-off: contests here have voters in the thousands, and
persisting an index from opaque value back to token would reintroduce
exactly the recovery surface the obfuscation removes. A deployment at
larger scale should index by the opaque value instead.

# Issuance

	tk, err := store.Issue(electionID, "v@example.com", models.ChannelEmail)

One token per voter identity per election, enforced by a unique
constraint; violations surface as ErrDuplicateVoter. Values are random
UUIDs, retried on the (negligible, but checked) chance of a collision
with the full token namespace.

# Redemption

	err := token.Redeem(tx, electionID, value)

Redemption is a single conditional UPDATE guarded on active = TRUE and
judged by rows affected. There is no read-then-write window: of N
concurrent redemptions of one token, exactly one succeeds. Redeem takes
an Execer so the vote ledger can run it inside the same transaction as
the vote insert.

Absent, wrong-election, and already-used tokens all yield
ErrInvalidToken, keeping "never issued" indistinguishable from "already
voted".
*/
package token
