// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// dialTimeout bounds the SMTP connection attempt so one unreachable mail
// host cannot stall a whole send batch.
const dialTimeout = 10 * time.Second

// Mailer sends voting links over SMTP with STARTTLS.
type Mailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Notify emails the message to the recipient.
func (m *Mailer) Notify(to, body string) error {
	if m.Host == "" {
		return errors.New("mail host not configured")
	}

	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to mail server: %w", err)
	}

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open smtp session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return fmt.Errorf("starttls failed: %w", err)
		}
	}

	if m.User != "" {
		auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt failed: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}
	msg := "Subject: Your voting link\r\n" +
		"From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"\r\n" +
		body + "\r\n"
	if _, err := wc.Write([]byte(msg)); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}
