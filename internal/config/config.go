package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths groups filesystem locations used by the generator.
type Paths struct {
	BackgroundDir string `toml:"background_dir"`
	CoverImage    string `toml:"cover_image"`
	FontsDir      string `toml:"fonts_dir"`
	CacheDir      string `toml:"cache_dir"`
	OutputDir     string `toml:"output_dir"`
	StateDir      string `toml:"state_dir"`
	LogDir        string `toml:"log_dir"`
}

// TTS configures the captioned speech backend.
type TTS struct {
	BaseURL        string  `toml:"base_url"`
	Endpoint       string  `toml:"endpoint"`
	Model          string  `toml:"model"`
	Voice          string  `toml:"voice"`
	Speed          float64 `toml:"speed"`
	ResponseFormat string  `toml:"response_format"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxAttempts    int     `toml:"max_attempts"`
	CacheEnabled   bool    `toml:"cache_enabled"`
}

// Render holds the ffmpeg output settings and caption styling.
type Render struct {
	FFmpegBinary       string  `toml:"ffmpeg_binary"`
	FFprobeBinary      string  `toml:"ffprobe_binary"`
	Width              int     `toml:"width"`
	Height             int     `toml:"height"`
	FPS                int     `toml:"fps"`
	VideoCodec         string  `toml:"video_codec"`
	AudioCodec         string  `toml:"audio_codec"`
	Preset             string  `toml:"preset"`
	PixelFormat        string  `toml:"pixel_format"`
	TailPaddingSeconds float64 `toml:"tail_padding_seconds"`
	CaptionFont        string  `toml:"caption_font"`
	CaptionFontSize    int     `toml:"caption_font_size"`
	CaptionStroke      int     `toml:"caption_stroke"`
	CaptionY           int     `toml:"caption_y"`
	TitleFontSize      int     `toml:"title_font_size"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
}

// Captions configures token merging and sidecar output.
type Captions struct {
	MergeWords         []string `toml:"merge_words"`
	AllowedPunctuation []string `toml:"allowed_punctuation"`
	RemovedPunctuation []string `toml:"removed_punctuation"`
	WriteSRT           bool     `toml:"write_srt"`
}

// Notifications configures ntfy delivery. An empty topic disables it.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging selects the log format and level.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the top-level configuration document.
type Config struct {
	Paths         Paths         `toml:"paths"`
	TTS           TTS           `toml:"tts"`
	Render        Render        `toml:"render"`
	Captions      Captions      `toml:"captions"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the per-user configuration location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads configuration from path, or from the default locations when path
// is empty. It returns the resolved path and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the writable directories the generator needs.
// The background directory is user supplied and only checked by preflight.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.OutputDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// AudioCacheDir is where synthesized narration is stored.
func (c *Config) AudioCacheDir() string {
	return filepath.Join(c.Paths.CacheDir, "tts")
}

// WorkDir is the scratch directory for per-job intermediate files.
func (c *Config) WorkDir() string {
	return filepath.Join(c.Paths.CacheDir, "work")
}

// JobsDatabasePath is the SQLite file holding generation history.
func (c *Config) JobsDatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "jobs.db")
}

// TTSURL joins the backend base URL and endpoint.
func (c *Config) TTSURL() string {
	return strings.TrimRight(c.TTS.BaseURL, "/") + "/" + strings.TrimLeft(c.TTS.Endpoint, "/")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "reelforge")
	}
	return "~/.cache/reelforge"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
