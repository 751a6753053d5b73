package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTTS()
	c.normalizeRender()
	c.normalizeCaptions()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.background_dir", &c.Paths.BackgroundDir},
		{"paths.cover_image", &c.Paths.CoverImage},
		{"paths.fonts_dir", &c.Paths.FontsDir},
		{"paths.cache_dir", &c.Paths.CacheDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeTTS() {
	c.TTS.BaseURL = strings.TrimSpace(c.TTS.BaseURL)
	if value, ok := os.LookupEnv("REELFORGE_TTS_URL"); ok && strings.TrimSpace(value) != "" {
		c.TTS.BaseURL = strings.TrimSpace(value)
	}
	if c.TTS.BaseURL == "" {
		c.TTS.BaseURL = defaultTTSBaseURL
	}
	c.TTS.Endpoint = strings.TrimSpace(c.TTS.Endpoint)
	if c.TTS.Endpoint == "" {
		c.TTS.Endpoint = defaultTTSEndpoint
	}
	c.TTS.Model = strings.TrimSpace(c.TTS.Model)
	if c.TTS.Model == "" {
		c.TTS.Model = defaultTTSModel
	}
	c.TTS.Voice = strings.TrimSpace(c.TTS.Voice)
	if value, ok := os.LookupEnv("REELFORGE_VOICE"); ok && strings.TrimSpace(value) != "" {
		c.TTS.Voice = strings.TrimSpace(value)
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = defaultTTSVoice
	}
	c.TTS.ResponseFormat = strings.ToLower(strings.TrimSpace(c.TTS.ResponseFormat))
	if c.TTS.ResponseFormat == "" {
		c.TTS.ResponseFormat = defaultTTSResponseFormat
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
	if c.TTS.MaxAttempts <= 0 {
		c.TTS.MaxAttempts = defaultTTSMaxAttempts
	}
}

func (c *Config) normalizeRender() {
	c.Render.FFmpegBinary = strings.TrimSpace(c.Render.FFmpegBinary)
	if c.Render.FFmpegBinary == "" {
		c.Render.FFmpegBinary = defaultFFmpegBinary
	}
	c.Render.FFprobeBinary = strings.TrimSpace(c.Render.FFprobeBinary)
	if c.Render.FFprobeBinary == "" {
		c.Render.FFprobeBinary = defaultFFprobeBinary
	}
	c.Render.VideoCodec = strings.TrimSpace(c.Render.VideoCodec)
	c.Render.AudioCodec = strings.TrimSpace(c.Render.AudioCodec)
	c.Render.Preset = strings.TrimSpace(c.Render.Preset)
	c.Render.PixelFormat = strings.TrimSpace(c.Render.PixelFormat)
	c.Render.CaptionFont = strings.TrimSpace(c.Render.CaptionFont)
	if c.Render.CaptionFont == "" {
		c.Render.CaptionFont = defaultCaptionFont
	}
	if c.Render.TimeoutSeconds <= 0 {
		c.Render.TimeoutSeconds = defaultRenderTimeoutSecond
	}
}

func (c *Config) normalizeCaptions() {
	c.Captions.MergeWords = trimList(c.Captions.MergeWords)
	c.Captions.AllowedPunctuation = trimList(c.Captions.AllowedPunctuation)
	c.Captions.RemovedPunctuation = trimList(c.Captions.RemovedPunctuation)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
