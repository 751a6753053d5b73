package pipeline_test

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"reelforge/internal/jobs"
	"reelforge/internal/pipeline"
	"reelforge/internal/script"
	"reelforge/internal/services"
	"reelforge/internal/testsupport"
)

func batchEntries() []script.Entry {
	return []script.Entry{
		{Title: "Big News", Body: "the cats rule!"},
		{Title: "Big News", Body: "the cats rule!"},
		{Title: "Big News", Body: "the cats rule!"},
	}
}

func TestBatchCollectsFailuresAndZipsOutputs(t *testing.T) {
	server := newSpeechServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithTTSURL(server.URL), testsupport.WithBackgrounds())
	cfg.Captions.WriteSRT = true
	store := testsupport.MustOpenStore(t, cfg)
	renderer := &fakeRenderer{failOn: map[int]error{1: services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "exit status 1", nil)}}
	notifier := &recordingNotifier{}
	gen := newGenerator(t, cfg, renderer, store, pipeline.WithNotifier(notifier))

	stale := filepath.Join(cfg.Paths.OutputDir, "video.mp4")
	testsupport.WriteFile(t, stale, 16)

	result, err := gen.Batch(context.Background(), batchEntries(), pipeline.BatchOptions{Clean: true, Zip: true})
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if result.BatchID == "" {
		t.Fatal("expected batch id")
	}
	if len(result.Outputs) != 2 || len(result.Failures) != 1 {
		t.Fatalf("unexpected result: outputs=%d failures=%d", len(result.Outputs), len(result.Failures))
	}
	failure := result.Failures[0]
	if failure.Index != 1 || !errors.Is(failure.Err, services.ErrExternalTool) {
		t.Fatalf("unexpected failure %+v", failure)
	}
	if result.Outputs[0].VideoPath != stale {
		t.Fatalf("expected clean to free video.mp4, got %q", result.Outputs[0].VideoPath)
	}

	zr, err := zip.OpenReader(result.ZipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	want := []string{"video.mp4", "video.srt", "video_1.mp4", "video_1.srt"}
	if len(names) != len(want) {
		t.Fatalf("unexpected zip entries %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected zip entries %v", names)
		}
	}

	batchJobs, err := store.List(context.Background(), jobs.ListOptions{BatchID: result.BatchID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(batchJobs) != 3 {
		t.Fatalf("expected 3 batch jobs, got %d", len(batchJobs))
	}
	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[jobs.StatusCompleted] != 2 || stats[jobs.StatusFailed] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, ".reelforge.lock")); err != nil {
		t.Fatalf("expected lock file to remain: %v", err)
	}
	if len(notifier.events) != 1 || notifier.events[0] != "batch:2/1" {
		t.Fatalf("expected one batch notification, got %v", notifier.events)
	}
}

func TestBatchStopOnError(t *testing.T) {
	server := newSpeechServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithTTSURL(server.URL), testsupport.WithBackgrounds())
	renderer := &fakeRenderer{failOn: map[int]error{0: errors.New("boom")}}
	gen := newGenerator(t, cfg, renderer, nil)

	result, err := gen.Batch(context.Background(), batchEntries(), pipeline.BatchOptions{StopOnError: true, Zip: true})
	if err == nil {
		t.Fatal("expected batch error")
	}
	if len(renderer.requests) != 1 || len(result.Failures) != 1 || result.ZipPath != "" {
		t.Fatalf("expected stop after first entry: renders=%d result=%+v", len(renderer.requests), result)
	}
}

func TestBatchStopsWhenCanceled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackgrounds())
	gen := newGenerator(t, cfg, &fakeRenderer{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gen.Batch(ctx, batchEntries(), pipeline.BatchOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBatchRejectsEmptyScript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	gen := newGenerator(t, cfg, &fakeRenderer{}, nil)

	_, err := gen.Batch(context.Background(), nil, pipeline.BatchOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
