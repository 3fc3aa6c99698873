// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateVoter is returned when an election already holds a
	// token for the voter identity.
	ErrDuplicateVoter = errors.New("voter already has a token for this election")

	// ErrInvalidToken covers absent, wrong-election, and already-redeemed
	// tokens alike so callers cannot probe which case applies.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// NewValue generates a random token value. Uniqueness against the full
// token namespace is enforced at insert time (see Store.Issue).
func NewValue() string {
	return uuid.NewString()
}

// Obfuscate derives the voter-facing opaque form of a token value using
// HMAC-SHA256 keyed with the server secret. The mapping is one-way:
// recovering the raw value requires re-hashing outstanding tokens.
func Obfuscate(secret, value string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))
}

// MatchesObfuscated reports whether opaque is the obfuscated form of value.
// Comparison is constant-time.
func MatchesObfuscated(secret, value, opaque string) bool {
	return hmac.Equal([]byte(Obfuscate(secret, value)), []byte(opaque))
}
