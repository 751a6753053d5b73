package render

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"reelforge/internal/services"
)

// ErrNoBackgrounds reports an empty or missing background directory.
var ErrNoBackgrounds = errors.New("no background videos found")

// ListBackgrounds returns the .mp4 files in dir, sorted by name.
func ListBackgrounds(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoBackgrounds, dir)
		}
		return nil, fmt.Errorf("read background dir: %w", err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mp4") {
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(out)
	return out, nil
}

// Picker returns an index in [0, n).
type Picker func(n int) int

// PickBackground chooses one background video from dir. A nil pick uses
// math/rand/v2.
func PickBackground(dir string, pick Picker) (string, error) {
	candidates, err := ListBackgrounds(dir)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "render", "pick background", dir, err)
	}
	if len(candidates) == 0 {
		return "", services.Wrap(services.ErrConfiguration, "render", "pick background", dir, ErrNoBackgrounds)
	}
	if pick == nil {
		pick = rand.IntN
	}
	idx := pick(len(candidates))
	if idx < 0 || idx >= len(candidates) {
		idx = 0
	}
	return candidates[idx], nil
}
