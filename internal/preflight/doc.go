// Package preflight provides readiness checks for the binaries, directories
// and services reelforge depends on.
//
// The "reelforge doctor" command prints every result. Make and batch runs
// call RunAll first and refuse to start when a required check fails, so a
// missing ffmpeg or an unreachable speech backend is reported before any job
// record is written.
package preflight
