package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if h := newFanoutHandler(nil, nil); h != (NoopHandler{}) {
		t.Fatalf("expected NoopHandler for nil handlers, got %T", h)
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Fatalf("expected single handler to be returned unwrapped, got %T", h)
	}
}

func TestFanoutHandlerRoutesByLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	info := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debug := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(newFanoutHandler(info, debug))

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be enabled when any handler accepts it")
	}
	logger.Debug("probe")
	if infoBuf.Len() != 0 {
		t.Fatalf("info handler received debug record: %s", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "probe") {
		t.Fatalf("debug handler missed record: %s", debugBuf.String())
	}

	logger.Info("rendered")
	for name, buf := range map[string]*bytes.Buffer{"info": &infoBuf, "debug": &debugBuf} {
		if !strings.Contains(buf.String(), "rendered") {
			t.Fatalf("%s handler missed info record: %s", name, buf.String())
		}
	}
}

func TestFanoutHandlerPropagatesAttrsAndGroups(t *testing.T) {
	var a, b bytes.Buffer
	h := newFanoutHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))
	logger := slog.New(h).With(String(FieldJobID, "job-1")).WithGroup("tts")
	logger.Info("synthesized", Int("tokens", 12))

	for _, out := range []string{a.String(), b.String()} {
		if !strings.Contains(out, `"job_id":"job-1"`) {
			t.Fatalf("missing job_id attr: %s", out)
		}
		if !strings.Contains(out, `"tts":{"tokens":12}`) {
			t.Fatalf("missing grouped attr: %s", out)
		}
	}
}
