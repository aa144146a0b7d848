// Package notifier delivers run reports.
//
// Email is the primary channel: one plain-text UTF-8 message over an authenticated TLS
// SMTP connection. Telegram and Twitter can receive the same report, and a dry-run
// notifier prints it instead of sending. Delivery failures are returned to the caller
// unchanged; nothing here retries.
package notifier
