package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port        int
	DatabaseURL string

	// TokenSecret keys the HMAC that derives opaque voting tokens.
	TokenSecret string
	// JWTSecret signs admin session tokens. Falls back to TokenSecret.
	JWTSecret     string
	JWTTTLSeconds int

	// FrontendURL is the base for public voting links (no trailing slash).
	FrontendURL string
	UploadDir   string

	// Mail settings (email delivery of voting links)
	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	// SMS gateway settings
	SMSAPIURL string
	SMSUser   string
	SMSToken  string
	SMSSender string

	// Optional initial admin account, created at startup if absent
	AdminUser string
	AdminPass string
}

// ParseFlags validates flags and sets defaults, falling back to
// environment variables for anything not given on the command line.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("ballotbox", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.FrontendURL, "frontend-url", "", "Frontend base URL for voting links")
	fs.StringVar(&cfg.UploadDir, "upload-dir", "", "Directory for candidate photo uploads")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "Token obfuscation secret (prefer env)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Admin JWT signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 5000 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	// Secrets - the token secret MUST be provided
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = os.Getenv("SECRET_KEY")
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("SECRET_KEY required")
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET_KEY")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = cfg.TokenSecret
	}

	cfg.JWTTTLSeconds = 3600
	if ttlStr := os.Getenv("JWT_EXP_DELTA_SECONDS"); ttlStr != "" {
		ttl, err := strconv.Atoi(ttlStr)
		if err != nil || ttl <= 0 {
			return Config{}, errors.New("invalid JWT_EXP_DELTA_SECONDS env variable")
		}
		cfg.JWTTTLSeconds = ttl
	}

	if cfg.FrontendURL == "" {
		cfg.FrontendURL = os.Getenv("FRONTEND_URL")
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:3000"
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = os.Getenv("UPLOAD_DIR")
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}

	// Mail settings are optional; delivery fails per-recipient when unset
	cfg.MailHost = os.Getenv("MAIL_HOST")
	cfg.MailPort = 587
	if portStr := os.Getenv("MAIL_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, errors.New("invalid MAIL_PORT env variable")
		}
		cfg.MailPort = port
	}
	cfg.MailUser = os.Getenv("MAIL_USER")
	cfg.MailPass = os.Getenv("MAIL_PASS")
	cfg.MailFrom = os.Getenv("MAIL_FROM")
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.MailUser
	}

	cfg.SMSAPIURL = os.Getenv("SMS_API_URL")
	cfg.SMSUser = os.Getenv("SMS_USER")
	cfg.SMSToken = os.Getenv("SMS_TOKEN")
	cfg.SMSSender = os.Getenv("SMS_SENDER")

	cfg.AdminUser = os.Getenv("ADMIN_USER")
	cfg.AdminPass = os.Getenv("ADMIN_PASS")

	return cfg, nil
}
