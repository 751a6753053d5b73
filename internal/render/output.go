package render

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	outputBase = "video"
	outputExt  = ".mp4"
)

var numberedOutput = regexp.MustCompile(`^video_(\d+)\.mp4$`)

// NextOutputPath returns dir/video.mp4 when it does not exist yet, otherwise
// dir/video_N.mp4 where N is one more than the highest existing suffix.
func NextOutputPath(dir string) (string, error) {
	base := filepath.Join(dir, outputBase+outputExt)
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return base, nil
	} else if err != nil {
		return "", fmt.Errorf("stat %s: %w", base, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read output dir: %w", err)
	}
	highest := 0
	for _, entry := range entries {
		m := numberedOutput.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", outputBase, highest+1, outputExt)), nil
}

// CleanOutputs removes regular files from dir and returns how many were
// deleted. Subdirectories and dotfiles (the batch lock lives there) are kept.
// A missing dir is created.
func CleanOutputs(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return 0, fmt.Errorf("read output dir: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
