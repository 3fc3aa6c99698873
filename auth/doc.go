// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin authentication: password hashing and
revocable JWT sessions.

# Passwords

bcrypt at the default cost:

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPassword(hash, password)

# Sessions

HS256 JWTs carrying subject (admin id), jti, and expiry:

	signed, jti, err := auth.IssueAdminToken(secret, adminID, time.Hour, time.Now())
	claims, err := auth.ParseAdminToken(secret, raw)

Logout revokes the jti into the admin_token_blocklist table, so a token
is invalid before its expiry once auth.Revoke has run. The admin guard
checks auth.IsRevoked on every request.

The resulting principal id is glue only: no voting-path operation
consumes it.
*/
package auth
