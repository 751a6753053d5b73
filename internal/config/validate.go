package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var supportedResponseFormats = map[string]struct{}{
	"mp3":  {},
	"wav":  {},
	"opus": {},
	"flac": {},
	"aac":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	return c.validateNotifications()
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateTTS() error {
	parsed, err := url.Parse(c.TTS.BaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("tts.base_url %q must be an http(s) URL", c.TTS.BaseURL)
	}
	if c.TTS.Speed < 0.25 || c.TTS.Speed > 4.0 {
		return errors.New("tts.speed must be between 0.25 and 4.0")
	}
	if _, ok := supportedResponseFormats[c.TTS.ResponseFormat]; !ok {
		return fmt.Errorf("tts.response_format %q is not supported", c.TTS.ResponseFormat)
	}
	return ensurePositiveMap(map[string]int{
		"tts.timeout_seconds": c.TTS.TimeoutSeconds,
		"tts.max_attempts":    c.TTS.MaxAttempts,
	})
}

func (c *Config) validateRender() error {
	if err := ensurePositiveMap(map[string]int{
		"render.width":             c.Render.Width,
		"render.height":            c.Render.Height,
		"render.fps":               c.Render.FPS,
		"render.caption_font_size": c.Render.CaptionFontSize,
		"render.title_font_size":   c.Render.TitleFontSize,
		"render.timeout_seconds":   c.Render.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Render.Width%2 != 0 || c.Render.Height%2 != 0 {
		return errors.New("render.width and render.height must be even")
	}
	if c.Render.CaptionStroke < 0 {
		return errors.New("render.caption_stroke must not be negative")
	}
	if c.Render.CaptionY < 0 || c.Render.CaptionY > c.Render.Height {
		return fmt.Errorf("render.caption_y must be between 0 and render.height (%d)", c.Render.Height)
	}
	if c.Render.TailPaddingSeconds < 0 {
		return errors.New("render.tail_padding_seconds must not be negative")
	}
	for key, value := range map[string]string{
		"render.video_codec":  c.Render.VideoCodec,
		"render.audio_codec":  c.Render.AudioCodec,
		"render.pixel_format": c.Render.PixelFormat,
	} {
		if value == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateCaptions() error {
	removed := make(map[string]struct{}, len(c.Captions.RemovedPunctuation))
	for _, p := range c.Captions.RemovedPunctuation {
		removed[p] = struct{}{}
	}
	for _, p := range c.Captions.AllowedPunctuation {
		if _, ok := removed[p]; ok {
			return fmt.Errorf("captions: %q cannot be both allowed and removed punctuation", p)
		}
	}
	for _, w := range c.Captions.MergeWords {
		if strings.ContainsAny(w, " \t\n") {
			return fmt.Errorf("captions.merge_words entry %q must be a single word", w)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("notifications.ntfy_topic %q must be a full http(s) topic URL", c.Notifications.NtfyTopic)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
