package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"

	"reelforge/internal/media/ffprobe"
)

// WAVDuration reads the duration of a PCM WAV file from its header.
func WAVDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("wav %s: invalid header", filepath.Base(path))
	}
	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("wav duration: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("wav %s: empty audio", filepath.Base(path))
	}
	return d.Seconds(), nil
}

// Duration returns the length of the audio at path in seconds.
func Duration(ctx context.Context, ffprobeBinary, path string) (float64, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		if seconds, err := WAVDuration(path); err == nil {
			return seconds, nil
		}
	}
	return ffprobe.Duration(ctx, ffprobeBinary, path)
}
