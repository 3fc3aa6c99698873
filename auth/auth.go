// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid or revoked session token")
)

// HashPassword returns the bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueAdminToken signs an HS256 session token for an admin. The jti lets
// the session be revoked server-side via the blocklist.
func IssueAdminToken(secret, adminID string, ttl time.Duration, now time.Time) (signed, jti string, err error) {
	jti = uuid.NewString()
	claims := jwt.RegisteredClaims{
		Subject:   adminID,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, jti, nil
}

// ParseAdminToken validates signature and expiry and returns the claims.
func ParseAdminToken(secret, raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// IsRevoked reports whether a token's jti is on the blocklist.
func IsRevoked(db *sql.DB, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	var revoked bool
	err := db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM admin_token_blocklist WHERE jti = $1)
	`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("failed to check blocklist: %w", err)
	}
	return revoked, nil
}

// Revoke puts a token's jti on the blocklist. Idempotent.
func Revoke(db *sql.DB, jti, tokenType, adminID string) error {
	_, err := db.Exec(`
		INSERT INTO admin_token_blocklist (jti, token_type, admin_id, revoked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jti) DO NOTHING
	`, jti, tokenType, adminID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
