// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p              Server port
	-d              Database URL
	--frontend-url  Frontend base URL for voting links
	--upload-dir    Candidate photo upload directory
	--token-secret  Token obfuscation secret
	--jwt-secret    Admin JWT signing secret

# Environment Variables

Flags fall back to environment variables:

	PORT                  → -p (default 5000)
	DATABASE_URL          → -d
	SECRET_KEY            → --token-secret
	JWT_SECRET_KEY        → --jwt-secret (defaults to SECRET_KEY)
	JWT_EXP_DELTA_SECONDS → admin session lifetime (default 3600)
	FRONTEND_URL          → --frontend-url
	UPLOAD_DIR            → --upload-dir

Mail (MAIL_HOST, MAIL_PORT, MAIL_USER, MAIL_PASS, MAIL_FROM), SMS
(SMS_API_URL, SMS_USER, SMS_TOKEN, SMS_SENDER), and the initial admin
account (ADMIN_USER, ADMIN_PASS) come from the environment only.

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - SECRET_KEY must be provided

Mail and SMS settings are optional; when unset, delivery to the affected
channel fails per-recipient without aborting a batch.
*/
package cliparse
