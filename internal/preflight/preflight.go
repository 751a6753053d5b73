package preflight

import (
	"context"

	"reelforge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
	// Optional results are informational and never block a run.
	Optional bool `json:"optional,omitempty"`
}

// RunAll executes every preflight check for cfg in display order.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, fromStatus(status))
	}

	results = append(results,
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckBackgrounds(cfg.Paths.BackgroundDir),
	)
	if cfg.Paths.CoverImage != "" {
		results = append(results, CheckCoverImage(cfg.Paths.CoverImage))
	}
	if cfg.Paths.FontsDir != "" {
		dirCheck := CheckDirectoryAccess("Fonts directory", cfg.Paths.FontsDir)
		dirCheck.Optional = true
		results = append(results, dirCheck)
	}
	results = append(results, CheckTTS(ctx, cfg))
	return results
}

// Failed returns the non-optional results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
