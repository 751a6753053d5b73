package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelforge/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckBackgrounds(t *testing.T) {
	dir := t.TempDir()
	if result := CheckBackgrounds(dir); result.Passed {
		t.Fatalf("expected failure for empty dir, got %+v", result)
	}
	testsupport.WriteFile(t, filepath.Join(dir, "clip.MP4"), 8)
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), 8)
	result := CheckBackgrounds(dir)
	if !result.Passed || !strings.Contains(result.Detail, "1 clip") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckCoverImageIsOptional(t *testing.T) {
	result := CheckCoverImage(filepath.Join(t.TempDir(), "missing.png"))
	if result.Passed || !result.Optional {
		t.Fatalf("expected optional failure, got %+v", result)
	}
	if len(Failed([]Result{result})) != 0 {
		t.Fatal("optional failures must not block")
	}
}

func TestCheckTTS_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithTTSURL(srv.URL))
	result := CheckTTS(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckTTS_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithTTSURL(srv.URL))
	if result := CheckTTS(context.Background(), cfg); result.Passed {
		t.Fatal("expected failure for 503")
	}
}

func TestCheckTTS_MissingURL(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTTSURL(""))
	if result := CheckTTS(context.Background(), cfg); result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReadyConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithTTSURL(srv.URL),
		testsupport.WithBackgrounds(),
		testsupport.WithStubbedBinaries(),
	)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	want := "FFmpeg,FFprobe,Output directory,Cache directory,State directory,Background videos,Speech backend"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("unexpected check order %s", got)
	}
}

func TestRunAll_ReportsMissingBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackgrounds())
	cfg.Render.FFmpegBinary = "clearly-not-present-ffmpeg"
	results := RunAll(context.Background(), cfg)
	found := false
	for _, r := range Failed(results) {
		if r.Name == "FFmpeg" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected FFmpeg failure")
	}
}
