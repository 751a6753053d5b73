// Package services defines shared utilities consumed by the generation
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, batch IDs, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper, so failures can be
//     classified (validation vs external tool vs transient) when a job is
//     recorded.
//
// Sub-packages hold the clients for external services such as the speech
// backend.
package services
