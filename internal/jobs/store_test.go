package jobs_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"reelforge/internal/jobs"
	"reelforge/internal/services"
	"reelforge/internal/testsupport"
)

func TestCreateAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := &jobs.Job{Title: "My boss said no", Voice: "af_heart", Speed: 1.25, BatchID: "batch-1"}
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.ID == "" || job.Status != jobs.StatusPending || job.CreatedAt.IsZero() {
		t.Fatalf("Create did not populate defaults: %+v", job)
	}

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Title != job.Title || got.Speed != 1.25 || got.BatchID != "batch-1" {
		t.Fatalf("unexpected job: %+v", got)
	}
	if !got.CreatedAt.Equal(job.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, job.CreatedAt)
	}

	byPrefix, err := store.Get(ctx, job.ID[:8])
	if err != nil || byPrefix == nil || byPrefix.ID != job.ID {
		t.Fatalf("prefix lookup = %+v, %v", byPrefix, err)
	}

	missing, err := store.Get(ctx, "does-not-exist")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing job, got %+v, %v", missing, err)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if err := store.Create(context.Background(), &jobs.Job{Voice: "af_heart"}); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestUpdate(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	job := testsupport.NewJob(t, store, "Title")

	job.Status = jobs.StatusCompleted
	job.TitleEnd = 1.9
	job.CaptionCount = 42
	job.AudioSeconds = 31.5
	job.OutputPath = "/tmp/video.mp4"
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != jobs.StatusCompleted || got.TitleEnd != 1.9 || got.CaptionCount != 42 || got.OutputPath != "/tmp/video.mp4" {
		t.Fatalf("update not persisted: %+v", got)
	}

	err = store.Update(ctx, &jobs.Job{ID: "missing", Status: jobs.StatusFailed})
	if !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, status := range []jobs.Status{jobs.StatusCompleted, jobs.StatusFailed, jobs.StatusCompleted} {
		batchID := "b2"
		if i < 2 {
			batchID = "b1"
		}
		job := &jobs.Job{
			Title:     fmt.Sprintf("job %d", i),
			Voice:     "af_heart",
			Speed:     1,
			Status:    status,
			BatchID:   batchID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.Create(ctx, job); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := store.List(ctx, jobs.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].Title != "job 2" || all[2].Title != "job 0" {
		t.Fatalf("expected newest first, got %v", titles(all))
	}

	completed, err := store.List(ctx, jobs.ListOptions{Statuses: []jobs.Status{jobs.StatusCompleted}})
	if err != nil || len(completed) != 2 {
		t.Fatalf("status filter = %v, %v", titles(completed), err)
	}
	batch, err := store.List(ctx, jobs.ListOptions{BatchID: "b1"})
	if err != nil || len(batch) != 2 {
		t.Fatalf("batch filter = %v, %v", titles(batch), err)
	}
	limited, err := store.List(ctx, jobs.ListOptions{Limit: 1})
	if err != nil || len(limited) != 1 || limited[0].Title != "job 2" {
		t.Fatalf("limit = %v, %v", titles(limited), err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[jobs.StatusCompleted] != 2 || stats[jobs.StatusFailed] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestMarkInterrupted(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	cases := map[jobs.Status]jobs.Status{
		jobs.StatusPending:      jobs.StatusFailed,
		jobs.StatusSynthesizing: jobs.StatusFailed,
		jobs.StatusAligning:     jobs.StatusFailed,
		jobs.StatusRendering:    jobs.StatusFailed,
		jobs.StatusCompleted:    jobs.StatusCompleted,
		jobs.StatusCanceled:     jobs.StatusCanceled,
	}
	ids := map[string]jobs.Status{}
	for initial, want := range cases {
		job := &jobs.Job{Title: string(initial), Voice: "v", Speed: 1, Status: initial}
		if err := store.Create(ctx, job); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids[job.ID] = want
	}

	n, err := store.MarkInterrupted(ctx)
	if err != nil {
		t.Fatalf("MarkInterrupted: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 interrupted jobs, got %d", n)
	}
	for id, want := range ids {
		got, err := store.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != want {
			t.Errorf("%s: status = %s, want %s", got.Title, got.Status, want)
		}
		if want == jobs.StatusFailed && got.ErrorMessage != jobs.InterruptedReason {
			t.Errorf("%s: error = %q", got.Title, got.ErrorMessage)
		}
	}
}

func TestClearFinished(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	for _, status := range []jobs.Status{jobs.StatusCompleted, jobs.StatusFailed, jobs.StatusRendering} {
		if err := store.Create(ctx, &jobs.Job{Title: string(status), Voice: "v", Speed: 1, Status: status}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := store.ClearFinished(ctx, time.Now().Add(-time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("cutoff in the past should keep recent jobs: %d, %v", n, err)
	}
	n, err = store.ClearFinished(ctx, time.Time{})
	if err != nil || n != 2 {
		t.Fatalf("ClearFinished = %d, %v", n, err)
	}
	remaining, _ := store.List(ctx, jobs.ListOptions{})
	if len(remaining) != 1 || remaining[0].Status != jobs.StatusRendering {
		t.Fatalf("unexpected remaining jobs: %v", titles(remaining))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.db")
	store, err := jobs.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := jobs.OpenPath(path); !errors.Is(err, jobs.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}

	reopened, err := jobs.OpenPath(filepath.Join(t.TempDir(), "fresh.db"))
	if err != nil {
		t.Fatalf("fresh OpenPath: %v", err)
	}
	reopened.Close()
}

func TestJobFail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus jobs.Status
		wantKind   string
	}{
		{"validation", services.Wrap(services.ErrValidation, "align", "", "bad tokens", nil), jobs.StatusFailed, "validation"},
		{"timeout", services.Wrap(services.ErrTimeout, "tts", "", "slow", nil), jobs.StatusFailed, "timeout"},
		{"canceled", fmt.Errorf("render: %w", context.Canceled), jobs.StatusCanceled, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &jobs.Job{Status: jobs.StatusRendering}
			job.Fail(tt.err)
			if job.Status != tt.wantStatus || job.ErrorKind != tt.wantKind || job.ErrorMessage == "" {
				t.Fatalf("Fail produced %+v", job)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := jobs.ParseStatus(" Completed "); !ok || s != jobs.StatusCompleted {
		t.Fatalf("ParseStatus = %q, %v", s, ok)
	}
	if _, ok := jobs.ParseStatus("ripping"); ok {
		t.Fatal("unexpected status accepted")
	}
	if !jobs.StatusCanceled.IsTerminal() || jobs.StatusRendering.IsTerminal() {
		t.Fatal("IsTerminal mismatch")
	}
}

func titles(list []*jobs.Job) []string {
	out := make([]string, 0, len(list))
	for _, job := range list {
		out = append(out, job.Title)
	}
	return out
}
