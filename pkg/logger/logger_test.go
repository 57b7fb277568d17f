package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestInitWithWriterRejectsNil(t *testing.T) {
	if err := InitWithWriter(nil); err == nil {
		t.Fatal("expected error for nil writer")
	}
}

func TestLoggerWritesFieldsAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { _ = Init() }()

	ctx := WithRequestID(context.Background(), "req-42")
	Get().Info(ctx, "cycle built",
		String("season", "2023/2024"),
		Int("length", 7),
		Bool("normalized", true),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{"cycle built", "season=2023/2024", "length=7", "normalized=true", "took=1.5s", "request_id=req-42", "source=", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { _ = Init() }()

	ctx := context.Background()
	Get().Debug(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level, got %q", buf.String())
	}

	if err := SetLevelString("DEBUG"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Debug(ctx, "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug line missing after level change: %q", buf.String())
	}

	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { _ = Init() }()

	Named("cache").Info(context.Background(), "evicted", String("key", "gps"))
	if !strings.Contains(buf.String(), "cache.key=gps") {
		t.Fatalf("named group missing: %q", buf.String())
	}
}

func TestRequestIDWithoutValue(t *testing.T) {
	if id := RequestID(context.Background()); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
}
