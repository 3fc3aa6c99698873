// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// SMSClient talks to an SMS-PRO style JSON gateway.
type SMSClient struct {
	APIURL   string
	Username string
	Token    string
	Sender   string

	// HTTPClient may be overridden in tests. Defaults to a bounded client.
	HTTPClient *http.Client
}

type smsRequest struct {
	Username string `json:"Username"`
	Token    string `json:"Token"`
	Dest     string `json:"Dest"`
	Sms      string `json:"Sms"`
	Sender   string `json:"Sender"`
}

func (c *SMSClient) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// Notify sends one SMS to a phone number.
func (c *SMSClient) Notify(dest, message string) error {
	if c.APIURL == "" {
		return errors.New("sms gateway not configured")
	}

	payload, err := json.Marshal(smsRequest{
		Username: c.Username,
		Token:    c.Token,
		Dest:     dest,
		Sms:      message,
		Sender:   c.Sender,
	})
	if err != nil {
		return fmt.Errorf("failed to encode sms payload: %w", err)
	}

	resp, err := c.client().Post(c.APIURL+"/addOneSms", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
