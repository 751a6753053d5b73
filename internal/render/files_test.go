package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNextOutputPath(t *testing.T) {
	dir := t.TempDir()
	next := func() string {
		t.Helper()
		p, err := NextOutputPath(dir)
		if err != nil {
			t.Fatalf("NextOutputPath: %v", err)
		}
		return filepath.Base(p)
	}

	if got := next(); got != "video.mp4" {
		t.Fatalf("empty dir: got %s", got)
	}
	touch(t, filepath.Join(dir, "video.mp4"))
	if got := next(); got != "video_1.mp4" {
		t.Fatalf("after video.mp4: got %s", got)
	}
	touch(t, filepath.Join(dir, "video_2.mp4"))
	touch(t, filepath.Join(dir, "video_10.mp4"))
	touch(t, filepath.Join(dir, "video_x.mp4"))
	if got := next(); got != "video_11.mp4" {
		t.Fatalf("expected max+1, got %s", got)
	}
}

func TestNextOutputPathIgnoresNumberedWithoutBase(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "video_3.mp4"))
	p, err := NextOutputPath(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p) != "video.mp4" {
		t.Fatalf("got %s", p)
	}
}

func TestPickBackground(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.MP4", "notes.txt", ".hidden.mp4"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	list, err := ListBackgrounds(dir)
	if err != nil {
		t.Fatalf("ListBackgrounds: %v", err)
	}
	if len(list) != 2 || filepath.Base(list[0]) != "a.MP4" || filepath.Base(list[1]) != "b.mp4" {
		t.Fatalf("unexpected list: %v", list)
	}

	got, err := PickBackground(dir, func(n int) int { return n - 1 })
	if err != nil || filepath.Base(got) != "b.mp4" {
		t.Fatalf("PickBackground = %q, %v", got, err)
	}
	got, err = PickBackground(dir, func(int) int { return 99 })
	if err != nil || filepath.Base(got) != "a.MP4" {
		t.Fatalf("out of range pick should clamp to first: %q, %v", got, err)
	}
	if _, err := PickBackground(dir, nil); err != nil {
		t.Fatalf("random pick: %v", err)
	}
}

func TestPickBackgroundEmpty(t *testing.T) {
	_, err := PickBackground(t.TempDir(), nil)
	if !errors.Is(err, ErrNoBackgrounds) {
		t.Fatalf("expected ErrNoBackgrounds, got %v", err)
	}
	_, err = PickBackground(filepath.Join(t.TempDir(), "missing"), nil)
	if !errors.Is(err, ErrNoBackgrounds) {
		t.Fatalf("expected ErrNoBackgrounds for missing dir, got %v", err)
	}
}

func TestCleanOutputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "video.mp4"))
	touch(t, filepath.Join(dir, "video_1.mp4"))
	touch(t, filepath.Join(dir, ".lock"))
	if err := os.Mkdir(filepath.Join(dir, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	n, err := CleanOutputs(dir)
	if err != nil || n != 2 {
		t.Fatalf("CleanOutputs = %d, %v", n, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("expected lock and subdir to remain, got %d entries", len(entries))
	}

	missing := filepath.Join(t.TempDir(), "new")
	if _, err := CleanOutputs(missing); err != nil {
		t.Fatalf("CleanOutputs on missing dir: %v", err)
	}
	if _, err := os.Stat(missing); err != nil {
		t.Fatalf("missing dir not created: %v", err)
	}
}
