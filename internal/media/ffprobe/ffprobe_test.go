package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   float64
	}{
		{name: "container", result: Result{Format: Format{Duration: "12.5"}}, want: 12.5},
		{
			name: "stream fallback",
			result: Result{
				Format: Format{Duration: "N/A"},
				Streams: []Stream{
					{CodecType: "video", Duration: "9.96"},
					{CodecType: "audio", Duration: "10.01"},
				},
			},
			want: 10.01,
		},
		{name: "missing", result: Result{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.DurationSeconds(); got != tt.want {
				t.Fatalf("DurationSeconds = %v, want %v", got, tt.want)
			}
		})
	}

	bad := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(bad.DurationSeconds()) {
		t.Fatalf("expected NaN for malformed duration, got %v", bad.DurationSeconds())
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestInspectAndDuration(t *testing.T) {
	stub := writeStub(t, `cat <<'JSON'
{"streams":[{"index":0,"codec_type":"audio","codec_name":"mp3","duration":"4.20"}],"format":{"filename":"x.mp3","duration":"4.200000"}}
JSON
`)
	result, err := Inspect(context.Background(), stub, "x.mp3")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.Format.Filename != "x.mp3" || len(result.Streams) != 1 || result.Streams[0].CodecName != "mp3" {
		t.Fatalf("unexpected result: %+v", result)
	}
	seconds, err := Duration(context.Background(), stub, "x.mp3")
	if err != nil || seconds != 4.2 {
		t.Fatalf("Duration = %v, %v", seconds, err)
	}
}

func TestInspectErrors(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
	failing := writeStub(t, "echo 'No such file' >&2\nexit 1\n")
	if _, err := Inspect(context.Background(), failing, "missing.mp4"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
	noDuration := writeStub(t, `echo '{"streams":[],"format":{}}'`+"\n")
	if _, err := Duration(context.Background(), noDuration, "x.mp4"); err == nil {
		t.Fatal("expected error when no duration is reported")
	}
}
