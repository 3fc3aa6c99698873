// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify delivers voting links to voters by email or SMS.

The core only depends on the Notifier contract:

	err := notifier.Notify(recipient, message)

Dispatcher picks the Notifier matching a token's delivery channel.
Mailer speaks SMTP with STARTTLS and a bounded dial timeout; SMSClient
posts JSON to an SMS gateway with a bounded HTTP client. Either can be
left unconfigured, in which case deliveries on that channel fail
per-recipient.

Batch semantics live with the caller: a failed delivery marks that
recipient's notification as failed and the batch continues. Failures are
collected and reported next to successes, never raised as a batch-level
error.
*/
package notify
