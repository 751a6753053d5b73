package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reelforge/internal/captions"
	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/services"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// Settings are the encoder and layout parameters for one render.
type Settings struct {
	FFmpegBinary string
	Width        int
	Height       int
	FPS          int
	VideoCodec   string
	AudioCodec   string
	Preset       string
	PixelFormat  string
	TailPadding  float64
	CoverImage   string
	FontsDir     string
	Timeout      time.Duration
}

// SettingsFromConfig extracts render settings from the loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	return Settings{
		FFmpegBinary: cfg.Render.FFmpegBinary,
		Width:        cfg.Render.Width,
		Height:       cfg.Render.Height,
		FPS:          cfg.Render.FPS,
		VideoCodec:   cfg.Render.VideoCodec,
		AudioCodec:   cfg.Render.AudioCodec,
		Preset:       cfg.Render.Preset,
		PixelFormat:  cfg.Render.PixelFormat,
		TailPadding:  cfg.Render.TailPaddingSeconds,
		CoverImage:   cfg.Paths.CoverImage,
		FontsDir:     cfg.Paths.FontsDir,
		Timeout:      time.Duration(cfg.Render.TimeoutSeconds) * time.Second,
	}
}

// Request describes the inputs of a single render.
type Request struct {
	AudioPath         string
	AudioSeconds      float64
	BackgroundPath    string
	BackgroundSeconds float64
	SubtitlePath      string
	TitleEnd          float64
	OutputPath        string
}

// Result reports what was written.
type Result struct {
	OutputPath      string
	DurationSeconds float64
	Args            []string
}

// Renderer drives ffmpeg.
type Renderer struct {
	settings Settings
	logger   *slog.Logger
	run      commandRunner
}

// NewRenderer constructs a renderer using the provided settings.
func NewRenderer(settings Settings, logger *slog.Logger) *Renderer {
	if strings.TrimSpace(settings.FFmpegBinary) == "" {
		settings.FFmpegBinary = "ffmpeg"
	}
	return &Renderer{
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "render"),
		run:      defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (r *Renderer) WithCommandRunner(run commandRunner) {
	if r != nil && run != nil {
		r.run = run
	}
}

// Render encodes the video. Output is written beside the destination and
// renamed into place only after ffmpeg succeeds.
func (r *Renderer) Render(ctx context.Context, req Request) (Result, error) {
	if r == nil {
		return Result{}, errors.New("renderer not initialized")
	}
	if err := validateRequest(req); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "render", "validate request", err.Error(), nil)
	}

	duration := req.AudioSeconds + max(r.settings.TailPadding, 0)
	tmpPath := filepath.Join(filepath.Dir(req.OutputPath), ".render-"+filepath.Base(req.OutputPath))
	args := r.buildArgs(req, duration, tmpPath)

	if r.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.settings.Timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("executing ffmpeg",
		logging.String("background", filepath.Base(req.BackgroundPath)),
		logging.Float64("duration_seconds", duration),
		logging.Float64("title_end", req.TitleEnd),
		logging.Bool("cover_image", r.coverEnabled(req)),
		logging.String("args", strings.Join(args, " ")),
	)

	started := time.Now()
	if err := r.run(ctx, r.settings.FFmpegBinary, args...); err != nil {
		_ = os.Remove(tmpPath)
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return Result{}, services.Wrap(services.ErrTimeout, "render", "ffmpeg", "encode timed out", err)
		case errors.Is(ctx.Err(), context.Canceled):
			return Result{}, ctx.Err()
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "encode failed", err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "no output produced", err)
	}
	if err := os.Rename(tmpPath, req.OutputPath); err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, fmt.Errorf("finalize output: %w", err)
	}

	logger.Info("video rendered",
		logging.String("output", req.OutputPath),
		logging.Float64("duration_seconds", duration),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return Result{OutputPath: req.OutputPath, DurationSeconds: duration, Args: args}, nil
}

func validateRequest(req Request) error {
	switch {
	case strings.TrimSpace(req.AudioPath) == "":
		return errors.New("audio path is required")
	case strings.TrimSpace(req.BackgroundPath) == "":
		return errors.New("background path is required")
	case strings.TrimSpace(req.SubtitlePath) == "":
		return errors.New("subtitle path is required")
	case strings.TrimSpace(req.OutputPath) == "":
		return errors.New("output path is required")
	case req.AudioSeconds <= 0:
		return fmt.Errorf("audio duration must be positive, got %v", req.AudioSeconds)
	case req.TitleEnd < 0:
		return fmt.Errorf("title end must be non-negative, got %v", req.TitleEnd)
	}
	return nil
}

func (r *Renderer) coverEnabled(req Request) bool {
	if strings.TrimSpace(r.settings.CoverImage) == "" || req.TitleEnd <= 0 {
		return false
	}
	_, err := os.Stat(r.settings.CoverImage)
	return err == nil
}

// buildArgs assembles the ffmpeg command line. Inputs are 0 background,
// 1 narration, and optionally 2 the cover image.
func (r *Renderer) buildArgs(req Request, duration float64, output string) []string {
	s := r.settings
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-nostdin"}
	if req.BackgroundSeconds > 0 && req.BackgroundSeconds < duration {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args, "-i", req.BackgroundPath, "-i", req.AudioPath)
	cover := r.coverEnabled(req)
	if cover {
		args = append(args, "-loop", "1", "-i", s.CoverImage)
	}

	w, h := strconv.Itoa(s.Width), strconv.Itoa(s.Height)
	chain := []string{
		fmt.Sprintf("[0:v]scale=%s:%s:force_original_aspect_ratio=increase,crop=%s:%s,setsar=1,fps=%d[bg]", w, h, w, h, s.FPS),
	}
	base := "[bg]"
	if cover {
		chain = append(chain,
			fmt.Sprintf("[2:v]scale=%d:-1[cover]", s.Width*9/10),
			fmt.Sprintf("[bg][cover]overlay=(W-w)/2:(H-h)/2:enable='between(t,0,%s)'[base]", formatSeconds(req.TitleEnd)),
		)
		base = "[base]"
	}
	subs := "subtitles=" + captions.FilterPath(req.SubtitlePath)
	if strings.TrimSpace(s.FontsDir) != "" {
		subs += ":fontsdir=" + captions.FilterPath(s.FontsDir)
	}
	chain = append(chain, base+subs+"[v]")

	args = append(args,
		"-filter_complex", strings.Join(chain, ";"),
		"-map", "[v]", "-map", "1:a",
		"-t", formatSeconds(duration),
		"-r", strconv.Itoa(s.FPS),
		"-c:v", s.VideoCodec,
		"-preset", s.Preset,
		"-pix_fmt", s.PixelFormat,
		"-c:a", s.AudioCodec,
		"-movflags", "+faststart",
		"-f", "mp4",
		output,
	)
	return args
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
