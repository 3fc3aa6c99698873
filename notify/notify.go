// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"errors"
	"fmt"

	"ballotbox/models"
)

// Notifier delivers one message to one recipient. Implementations report
// failure per call; callers treat failures as per-recipient, never fatal
// to a batch.
type Notifier interface {
	Notify(recipient, message string) error
}

// Dispatcher routes deliveries to the notifier for the voter's channel.
type Dispatcher struct {
	Email Notifier
	SMS   Notifier
}

// For returns the notifier for a delivery channel.
func (d *Dispatcher) For(channel string) (Notifier, error) {
	switch channel {
	case models.ChannelEmail:
		if d.Email == nil {
			return nil, errors.New("email delivery not configured")
		}
		return d.Email, nil
	case models.ChannelSMS:
		if d.SMS == nil {
			return nil, errors.New("sms delivery not configured")
		}
		return d.SMS, nil
	}
	return nil, fmt.Errorf("unknown delivery channel %q", channel)
}
