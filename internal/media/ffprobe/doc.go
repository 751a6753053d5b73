// Package ffprobe wraps the ffprobe binary's JSON output.
//
// Inspect runs the probe; Duration is the shortcut the renderer uses to size
// narration audio and background clips.
package ffprobe
