package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"reelforge/internal/config"
	"reelforge/internal/deps"
	"reelforge/internal/render"
	"reelforge/internal/services/kokoro"
)

const ttsCheckTimeout = 5 * time.Second

// CheckTTS verifies the speech backend answers. It makes a single attempt.
func CheckTTS(ctx context.Context, cfg *config.Config) Result {
	const name = "Speech backend"

	base := strings.TrimSpace(cfg.TTS.BaseURL)
	if base == "" {
		return Result{Name: name, Detail: "missing base_url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, ttsCheckTimeout)
	defer cancel()

	client := kokoro.NewClient(kokoro.Config{
		BaseURL:        base,
		Endpoint:       cfg.TTS.Endpoint,
		Model:          cfg.TTS.Model,
		ResponseFormat: cfg.TTS.ResponseFormat,
	}, kokoro.WithRetryMaxAttempts(1))
	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeTTSError(base, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", base)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBackgrounds verifies at least one background clip is available.
func CheckBackgrounds(dir string) Result {
	const name = "Background videos"

	clips, err := render.ListBackgrounds(dir)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if len(clips) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (no .mp4 files)", dir)}
	}
	noun := "clips"
	if len(clips) == 1 {
		noun = "clip"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d %s)", dir, len(clips), noun)}
}

// CheckCoverImage verifies the configured title-card image is a readable file.
// A missing cover only disables the overlay, so the result is optional.
func CheckCoverImage(path string) Result {
	const name = "Cover image"

	info, err := os.Stat(path)
	switch {
	case err != nil:
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (overlay disabled: %v)", path, err)}
	case info.IsDir():
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (overlay disabled: is a directory)", path)}
	case unix.Access(path, unix.R_OK) != nil:
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (overlay disabled: not readable)", path)}
	}
	return Result{Name: name, Optional: true, Passed: true, Detail: path}
}

// CheckSystemDeps evaluates the external binaries for cfg. Both doctor and
// the preflight gate use this list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(ctx, []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Render.FFmpegBinary,
			Description: "Required for rendering",
			VersionFlag: "-version",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Render.FFprobeBinary,
			Description: "Required for media inspection",
			VersionFlag: "-version",
		},
	})
}

func fromStatus(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
	switch {
	case !status.Available:
		result.Detail = status.Detail
	case status.Version != "":
		result.Detail = fmt.Sprintf("%s (%s)", status.Path, status.Version)
	default:
		result.Detail = status.Path
	}
	return result
}

func summarizeTTSError(base string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s (timed out)", base)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("%s (timed out)", base)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Sprintf("%s (unreachable: %v)", base, opErr.Err)
	}
	return err.Error()
}
