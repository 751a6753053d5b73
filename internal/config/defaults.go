package config

const (
	defaultConfigPath          = "~/.config/reelforge/config.toml"
	defaultBackgroundDir       = "~/.local/share/reelforge/backgrounds"
	defaultOutputDir           = "~/.local/share/reelforge/outputs"
	defaultStateDir            = "~/.local/share/reelforge"
	defaultLogDir              = "~/.local/share/reelforge/logs"
	defaultTTSBaseURL          = "http://localhost:8880"
	defaultTTSEndpoint         = "/dev/captioned_speech"
	defaultTTSModel            = "kokoro"
	defaultTTSVoice            = "af_heart"
	defaultTTSSpeed            = 1.0
	defaultTTSResponseFormat   = "mp3"
	defaultTTSTimeoutSeconds   = 120
	defaultTTSMaxAttempts      = 3
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultWidth               = 1080
	defaultHeight              = 1920
	defaultFPS                 = 24
	defaultVideoCodec          = "libx264"
	defaultAudioCodec          = "aac"
	defaultPreset              = "medium"
	defaultPixelFormat         = "yuv420p"
	defaultTailPaddingSeconds  = 0.3
	defaultCaptionFont         = "Open Sans"
	defaultCaptionFontSize     = 110
	defaultCaptionStroke       = 10
	defaultCaptionY            = 1100
	defaultTitleFontSize       = 70
	defaultRenderTimeoutSecond = 1800
	defaultNtfyRequestTimeout  = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

var (
	defaultMergeWords         = []string{"a", "an", "the", "or", "and"}
	defaultAllowedPunctuation = []string{"?"}
	defaultRemovedPunctuation = []string{"!", ",", ".", ":", ";"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BackgroundDir: defaultBackgroundDir,
			CacheDir:      defaultCacheDir(),
			OutputDir:     defaultOutputDir,
			StateDir:      defaultStateDir,
			LogDir:        defaultLogDir,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			Endpoint:       defaultTTSEndpoint,
			Model:          defaultTTSModel,
			Voice:          defaultTTSVoice,
			Speed:          defaultTTSSpeed,
			ResponseFormat: defaultTTSResponseFormat,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
			MaxAttempts:    defaultTTSMaxAttempts,
			CacheEnabled:   true,
		},
		Render: Render{
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
			Width:              defaultWidth,
			Height:             defaultHeight,
			FPS:                defaultFPS,
			VideoCodec:         defaultVideoCodec,
			AudioCodec:         defaultAudioCodec,
			Preset:             defaultPreset,
			PixelFormat:        defaultPixelFormat,
			TailPaddingSeconds: defaultTailPaddingSeconds,
			CaptionFont:        defaultCaptionFont,
			CaptionFontSize:    defaultCaptionFontSize,
			CaptionStroke:      defaultCaptionStroke,
			CaptionY:           defaultCaptionY,
			TitleFontSize:      defaultTitleFontSize,
			TimeoutSeconds:     defaultRenderTimeoutSecond,
		},
		Captions: Captions{
			MergeWords:         append([]string(nil), defaultMergeWords...),
			AllowedPunctuation: append([]string(nil), defaultAllowedPunctuation...),
			RemovedPunctuation: append([]string(nil), defaultRemovedPunctuation...),
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
