package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"reelforge/internal/logging"
	"reelforge/internal/render"
	"reelforge/internal/script"
	"reelforge/internal/services"
)

// BatchOptions control a batch run.
type BatchOptions struct {
	Voice string
	Speed float64
	// Clean removes previous outputs before the first render.
	Clean bool
	// Zip bundles the rendered videos into generated_videos_<batch>.zip.
	Zip bool
	// StopOnError aborts the batch at the first failed entry.
	StopOnError bool
}

// Failure records one entry that did not render.
type Failure struct {
	Index int
	Title string
	JobID string
	Err   error
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	BatchID  string
	Outputs  []Output
	Failures []Failure
	ZipPath  string
}

// Batch renders every entry in order. Individual failures are collected and
// the run continues unless StopOnError is set; the returned error is non-nil
// only for failures that stop the whole batch.
func (g *Generator) Batch(ctx context.Context, entries []script.Entry, opts BatchOptions) (BatchResult, error) {
	if len(entries) == 0 {
		return BatchResult{}, services.Wrap(services.ErrValidation, "batch", "parse script", "no title/body pairs found", nil)
	}
	lock, err := acquireLock(g.cfg.Paths.OutputDir)
	if err != nil {
		return BatchResult{}, err
	}
	defer func() { _ = lock.Unlock() }()

	g.recoverInterrupted(ctx)

	started := time.Now()
	result := BatchResult{BatchID: ulid.Make().String()}
	ctx = services.WithBatchID(ctx, result.BatchID)
	logger := logging.WithContext(ctx, g.logger)

	if opts.Clean {
		removed, err := render.CleanOutputs(g.cfg.Paths.OutputDir)
		if err != nil {
			return result, fmt.Errorf("clean outputs: %w", err)
		}
		logger.Info("cleaned previous outputs", logging.Int("removed", removed))
	}

	logger.Info("batch started", logging.Int("entries", len(entries)))
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		logger.Info("rendering batch entry",
			logging.Int("index", i+1),
			logging.Int("total", len(entries)),
			logging.String("title", entry.Title),
		)
		out, err := g.generate(ctx, Request{Title: entry.Title, Body: entry.Body, Voice: opts.Voice, Speed: opts.Speed}, result.BatchID)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Index: i, Title: entry.Title, JobID: out.JobID, Err: err})
			if opts.StopOnError || errors.Is(err, context.Canceled) {
				return result, err
			}
			continue
		}
		result.Outputs = append(result.Outputs, out)
	}

	if opts.Zip && len(result.Outputs) > 0 {
		files := make([]string, 0, len(result.Outputs)*2)
		for _, out := range result.Outputs {
			files = append(files, out.VideoPath)
			if out.SRTPath != "" {
				files = append(files, out.SRTPath)
			}
		}
		zipPath := filepath.Join(g.cfg.Paths.OutputDir, "generated_videos_"+result.BatchID+".zip")
		if err := writeZip(zipPath, files); err != nil {
			return result, fmt.Errorf("bundle outputs: %w", err)
		}
		result.ZipPath = zipPath
	}

	g.notify(ctx, "batch_completed", func(ctx context.Context) error {
		return g.notifier.NotifyBatchCompleted(ctx, len(result.Outputs), len(result.Failures), time.Since(started))
	})
	logger.Info("batch finished",
		logging.Int("rendered", len(result.Outputs)),
		logging.Int("failed", len(result.Failures)),
		logging.String("zip", result.ZipPath),
	)
	return result, nil
}
