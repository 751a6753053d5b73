// Package pipeline orchestrates a full video generation: narration through
// the speech backend (or cache), title/body alignment, caption files, and
// the ffmpeg render, with every attempt recorded in the job store.
//
// Make renders one title/body pair; Batch renders a parsed script and can
// bundle the results into a zip archive. Both hold an exclusive lock on the
// output directory for their duration. Finished videos, failures and batch
// summaries are announced through internal/notifications.
package pipeline
