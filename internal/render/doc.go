// Package render turns narration audio, a background clip, and an ASS caption
// file into the final vertical video with a single ffmpeg invocation.
//
// It also owns the output directory conventions: random background selection,
// video.mp4 / video_N.mp4 naming, and cleaning previous renders.
package render
