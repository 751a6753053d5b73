// Package notifications publishes generation events to ntfy.
//
// NewService returns a no-op Service when no topic is configured, so callers
// never need to check whether notifications are enabled before sending.
package notifications
