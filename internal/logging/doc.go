// Package logging assembles the slog loggers used by reelforge.
//
// Console output is a readable multi-line format with optional colour; the
// file sink is JSON. Context helpers tag lines with job, batch, stage, and
// correlation IDs so pipeline code never builds those attributes by hand.
package logging
