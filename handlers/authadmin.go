// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"ballotbox/auth"
	"ballotbox/cliparse"
	"ballotbox/middleware"
	"ballotbox/models"
)

type AuthHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// Login handles POST /api/v1/admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Username == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username and password are required")
		return
	}

	var adminID, passwordHash string
	err := h.db.QueryRow(`
		SELECT id, password_hash FROM admin WHERE username = $1
	`, req.Username).Scan(&adminID, &passwordHash)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		slog.Error("failed to query admin", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !auth.CheckPassword(passwordHash, req.Password) {
		slog.Warn("failed admin login", "username", req.Username, "ip", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	ttl := time.Duration(h.cfg.JWTTTLSeconds) * time.Second
	signed, _, err := auth.IssueAdminToken(h.cfg.JWTSecret, adminID, ttl, time.Now())
	if err != nil {
		slog.Error("failed to issue admin token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("admin logged in", "username", req.Username)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   h.cfg.JWTTTLSeconds,
	})
}

// Logout handles POST /api/v1/admin/logout
// Revokes the presented token's jti so the session dies before its expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw := middleware.BearerToken(r)
	if raw == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}

	claims, err := auth.ParseAdminToken(h.cfg.JWTSecret, raw)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
		return
	}

	if err := auth.Revoke(h.db, claims.ID, "access", claims.Subject); err != nil {
		slog.Error("failed to revoke session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	slog.Info("admin logged out", "admin_id", claims.Subject)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
