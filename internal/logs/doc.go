// Package logs reads the JSON log file written by internal/logging.
//
// Tail returns the last N lines or everything after a byte offset and can
// wait for new lines, which is how `reelforge logs --follow` polls. ParseLine
// and Filter turn raw lines into entries that can be narrowed to one job,
// batch or minimum level before being printed with Format.
package logs
