// Package audio measures narration audio length.
//
// WAV files are read directly from their header; everything else is probed
// with ffprobe.
package audio
