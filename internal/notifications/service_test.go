package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyVideoCompleted(context.Background(), "Example", "/tmp/video.mp4"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("expected nil config to yield noop notifier, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "video completed",
			send: func(s notifications.Service) error {
				return s.NotifyVideoCompleted(context.Background(), " Big News ", "/out/video.mp4")
			},
			expectTitle:   "reelforge - Video Ready",
			expectMessage: "Video ready: Big News\nFile: /out/video.mp4",
			expectTags:    "reelforge,video,completed",
		},
		{
			name: "batch completed",
			send: func(s notifications.Service) error {
				return s.NotifyBatchCompleted(context.Background(), 4, 0, 92*time.Second+300*time.Millisecond)
			},
			expectTitle:   "reelforge - Batch Complete",
			expectMessage: "Batch complete: 4 videos rendered in 1m32s",
			expectTags:    "reelforge,batch,completed",
		},
		{
			name: "batch with failures",
			send: func(s notifications.Service) error {
				return s.NotifyBatchCompleted(context.Background(), 2, 1, 0)
			},
			expectTitle:    "reelforge - Batch Complete (with errors)",
			expectMessage:  "Batch complete: 2 rendered, 1 failed in 0s",
			expectTags:     "reelforge,batch,completed",
			expectPriority: "high",
		},
		{
			name: "error",
			send: func(s notifications.Service) error {
				return s.NotifyError(context.Background(), errors.New("ffmpeg exited 1"), "Big News")
			},
			expectTitle:    "reelforge - Error",
			expectMessage:  "Error rendering Big News: ffmpeg exited 1",
			expectTags:     "reelforge,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			send:           func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			expectTitle:    "reelforge - Test",
			expectMessage:  "Notification system test",
			expectTags:     "reelforge,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			if err := tc.send(notifications.NewService(&cfg)); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := err.Error(); got != "ntfy returned 404: topic not found" {
		t.Fatalf("unexpected error %q", got)
	}
}
