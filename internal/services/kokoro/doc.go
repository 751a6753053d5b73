// Package kokoro talks to a Kokoro-FastAPI speech server.
//
// Client.Synthesize posts the narration to the captioned speech endpoint and
// returns the decoded audio together with per-word timestamps ready for
// alignment. The client retries on HTTP 408/429/5xx, refused connections and
// network timeouts with exponential backoff; context cancellation aborts
// retries immediately. Errors carry services markers so callers can tell a
// rejected request (validation) from an unavailable backend (transient).
//
// Voices lists the voice packs the server ships with.
package kokoro
