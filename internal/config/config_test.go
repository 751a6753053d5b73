package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelforge/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("REELFORGE_TTS_URL", "")
	t.Setenv("REELFORGE_VOICE", "")
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolateEnv(t)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(home, ".config", "reelforge", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if want := filepath.Join(home, ".cache", "reelforge"); cfg.Paths.CacheDir != want {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, want)
	}
	if want := filepath.Join(home, ".local", "share", "reelforge", "outputs"); cfg.Paths.OutputDir != want {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, want)
	}
	if cfg.TTSURL() != "http://localhost:8880/dev/captioned_speech" {
		t.Fatalf("unexpected tts url: %q", cfg.TTSURL())
	}
	if cfg.Render.Width != 1080 || cfg.Render.Height != 1920 || cfg.Render.FPS != 24 {
		t.Fatalf("unexpected render geometry: %+v", cfg.Render)
	}
	if len(cfg.Captions.MergeWords) != 5 {
		t.Fatalf("expected default merge words, got %v", cfg.Captions.MergeWords)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected console logging, got %q", cfg.Logging.Format)
	}
}

func TestLoadHonoursEnvironmentOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("REELFORGE_TTS_URL", "http://tts.internal:9000")
	t.Setenv("REELFORGE_VOICE", "bm_george")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TTS.BaseURL != "http://tts.internal:9000" {
		t.Fatalf("expected env base url, got %q", cfg.TTS.BaseURL)
	}
	if cfg.TTS.Voice != "bm_george" {
		t.Fatalf("expected env voice, got %q", cfg.TTS.Voice)
	}
}

func TestLoadReadsFileAndNormalizes(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := config.Default()
	cfg.Paths.OutputDir = "~/reels"
	cfg.TTS.ResponseFormat = " WAV "
	cfg.Captions.MergeWords = []string{" a ", "the", "the", ""}
	cfg.Logging.Format = "JSON"
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %q, got %q (exists=%v)", path, resolved, exists)
	}
	if loaded.Paths.OutputDir != filepath.Join(home, "reels") {
		t.Fatalf("unexpected output dir %q", loaded.Paths.OutputDir)
	}
	if loaded.TTS.ResponseFormat != "wav" {
		t.Fatalf("expected normalized response format, got %q", loaded.TTS.ResponseFormat)
	}
	if strings.Join(loaded.Captions.MergeWords, ",") != "a,the" {
		t.Fatalf("unexpected merge words %q", loaded.Captions.MergeWords)
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("expected json logging, got %q", loaded.Logging.Format)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"speed too high", func(c *config.Config) { c.TTS.Speed = 9 }, "tts.speed"},
		{"bad url", func(c *config.Config) { c.TTS.BaseURL = "localhost:8880" }, "tts.base_url"},
		{"unknown format", func(c *config.Config) { c.TTS.ResponseFormat = "ogg" }, "tts.response_format"},
		{"odd width", func(c *config.Config) { c.Render.Width = 1081 }, "must be even"},
		{"zero fps", func(c *config.Config) { c.Render.FPS = 0 }, "render.fps"},
		{"caption below frame", func(c *config.Config) { c.Render.CaptionY = 5000 }, "render.caption_y"},
		{"overlapping punctuation", func(c *config.Config) { c.Captions.AllowedPunctuation = []string{"?", "."} }, "both allowed and removed"},
		{"multi word merge entry", func(c *config.Config) { c.Captions.MergeWords = []string{"of the"} }, "single word"},
		{"bare ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "my-reels" }, "notifications.ntfy_topic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.OutputDir = "/tmp/out"
			cfg.Paths.CacheDir = "/tmp/cache"
			cfg.Paths.StateDir = "/tmp/state"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.TTS.Model != "kokoro" {
		t.Fatalf("unexpected model %q", cfg.TTS.Model)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.OutputDir, cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
