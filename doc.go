// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the BallotBox API server.

BallotBox is an online voting service: admins define elections and
candidates, issue one single-use token per voter, and deliver personal
voting links by email or SMS. Votes are anonymous (the ballot records no
voter or token reference) and results stream live over SSE.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... SECRET_KEY=... go run main.go

Or with flags:

	go run main.go -p 5000 -d "postgres://..." -token-secret "..."

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string
  - SECRET_KEY (-token-secret): Secret for token obfuscation HMAC

Optional settings:

  - PORT (-p): Server port (default: 5000)
  - JWT_SECRET_KEY (-jwt-secret): Admin session signing secret
    (default: SECRET_KEY)
  - JWT_EXP_DELTA_SECONDS: Session lifetime (default: 3600)
  - FRONTEND_URL (-frontend-url): Base URL for voting links
  - UPLOAD_DIR (-upload-dir): Candidate photo directory
  - MAIL_HOST, MAIL_PORT, MAIL_USER, MAIL_PASS, MAIL_FROM: SMTP delivery
  - SMS_API_URL, SMS_USER, SMS_TOKEN, SMS_SENDER: SMS gateway
  - ADMIN_USER, ADMIN_PASS: Initial admin account, seeded at startup

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (elections, candidates, tokens, vote,
    stats, auth)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, admin session guard
  - models: Request/response types
  - token: Token issuance, obfuscation, atomic redemption
  - voting: Window checks and the vote-casting transaction
  - live: Tally computation and the live-results hub
  - notify: Email and SMS delivery of voting links
  - auth: Password hashing and admin session tokens
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
