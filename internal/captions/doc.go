// Package captions renders aligned tokens into subtitle documents.
//
// The ASS document carries two styles: Title for the opening card and Caption
// for the per-word body captions burned into the video. An SRT sidecar with
// the same body cues can be written for players that want soft subtitles.
package captions
