// Package config loads, normalizes, and validates reelforge configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the REELFORGE_TTS_URL and
// REELFORGE_VOICE environment overrides. The Config type carries every knob
// the CLI and generation pipeline need: asset and output directories, the
// speech backend, ffmpeg output settings and the caption merge sets.
package config
