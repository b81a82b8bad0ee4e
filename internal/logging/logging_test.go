package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()
	if !strings.Contains(path, ".referer-parser") || filepath.Base(path) != LogFileName {
		t.Errorf("DefaultLogPath should be under .referer-parser/logs, got: %s", path)
	}
	if filepath.Dir(path) != DefaultLogDir() {
		t.Errorf("DefaultLogPath should be inside DefaultLogDir, got: %s", path)
	}
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()
	if cfg.Level != "debug" {
		t.Errorf("DebugConfig level should be debug, got: %s", cfg.Level)
	}
	if cfg.MaxSizeMB != 10 || cfg.MaxFiles != 5 {
		t.Errorf("unexpected rotation defaults: %d MB x %d", cfg.MaxSizeMB, cfg.MaxFiles)
	}
	if cfg.WriteToStderr {
		t.Error("debug logging should not mirror to stderr by default")
	}
}

func TestSetup(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "test.log")

	logger, cleanup, err := Setup(Config{Level: "debug", FilePath: logPath})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	logger.Debug("dataset_loaded", slog.Int("records", 42))
	cleanup()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"dataset_loaded"`) {
		t.Errorf("log should contain JSON message, got: %s", content)
	}
	if !strings.Contains(string(content), `"records":42`) {
		t.Errorf("log should contain attribute, got: %s", content)
	}
}

func TestSetup_LevelFilters(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")

	logger, cleanup, err := Setup(Config{Level: "warn", FilePath: logPath})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	cleanup()

	content, _ := os.ReadFile(logPath)
	if strings.Contains(string(content), "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(string(content), "shown") {
		t.Error("warn line should be written")
	}
}

func TestNewStderrLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStderrLogger(&buf, "warn")

	logger.Info("quiet")
	logger.Warn("dataset_reload_failed", slog.String("path", "/tmp/r.yml"))

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("info should be filtered")
	}
	if !strings.Contains(out, "msg=dataset_reload_failed") || !strings.Contains(out, "path=/tmp/r.yml") {
		t.Errorf("expected text handler output, got: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got := ValidLevel(tt.input); got != tt.valid {
				t.Errorf("ValidLevel(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestFindLogFile(t *testing.T) {
	if _, err := FindLogFile("/nonexistent/path/to/log.log"); err == nil {
		t.Error("expected error for missing explicit path")
	}

	logPath := filepath.Join(t.TempDir(), "explicit.log")
	if err := os.WriteFile(logPath, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindLogFile(logPath)
	if err != nil {
		t.Fatalf("FindLogFile failed: %v", err)
	}
	if got != logPath {
		t.Errorf("FindLogFile = %s, want %s", got, logPath)
	}
}

// ============================================================================
// Viewer Tests
// ============================================================================

const sampleLines = `{"time":"2026-01-02T15:04:05.123Z","level":"DEBUG","msg":"dataset_loaded","records":31}
{"time":"2026-01-02T15:04:06.000Z","level":"INFO","msg":"dataset_reloaded","path":"/data/referers.yml","domains":117}
not json at all
{"time":"2026-01-02T15:04:07.000Z","level":"WARN","msg":"dataset_reload_failed","error":"bad yaml"}
`

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "view.log")
	if err := os.WriteFile(path, []byte(sampleLines), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestViewer_Tail(t *testing.T) {
	path := writeLog(t)
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	entries, err := v.Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].IsValid {
		t.Error("raw line should be marked invalid")
	}
	if entries[1].Msg != "dataset_reload_failed" {
		t.Errorf("unexpected last entry: %+v", entries[1])
	}
}

func TestViewer_Tail_Filters(t *testing.T) {
	path := writeLog(t)

	v := NewViewer(ViewerConfig{Level: "info", NoColor: true}, &bytes.Buffer{})
	entries, err := v.Tail(path, 0)
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	for _, e := range entries {
		if e.Msg == "dataset_loaded" {
			t.Error("debug entry should be filtered at info level")
		}
	}

	v = NewViewer(ViewerConfig{Pattern: regexp.MustCompile("reload")}, &bytes.Buffer{})
	entries, _ = v.Tail(path, 0)
	if len(entries) != 2 {
		t.Errorf("expected 2 reload entries, got %d", len(entries))
	}
}

func TestViewer_Tail_NonexistentFile(t *testing.T) {
	v := NewViewer(ViewerConfig{}, &bytes.Buffer{})
	if _, err := v.Tail("/nonexistent/file.log", 10); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestViewer_FormatEntry(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	entry := parseLine(`{"time":"2026-01-02T15:04:06.000Z","level":"INFO","msg":"dataset_reloaded","path":"/p","domains":3}`)
	got := v.FormatEntry(entry)
	want := "15:04:06.000 INFO  dataset_reloaded domains=3 path=/p"
	if got != want {
		t.Errorf("FormatEntry = %q, want %q", got, want)
	}

	raw := parseLine("plain text")
	if got := v.FormatEntry(raw); got != "plain text" {
		t.Errorf("invalid entries should format raw, got %q", got)
	}
}

func TestViewer_Print(t *testing.T) {
	var buf bytes.Buffer
	v := NewViewer(ViewerConfig{NoColor: true}, &buf)

	v.Print([]LogEntry{
		parseLine(`{"time":"2026-01-02T15:04:05Z","level":"ERROR","msg":"boom"}`),
		parseLine("raw"),
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "ERROR boom") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
}

func TestViewer_Follow(t *testing.T) {
	path := writeLog(t)
	v := NewViewer(ViewerConfig{}, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	entries := make(chan LogEntry, 4)
	done := make(chan error, 1)
	go func() { done <- v.Follow(ctx, path, entries) }()

	// Let Follow seek to the end before appending
	time.Sleep(150 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(`{"time":"2026-01-02T15:05:00Z","level":"INFO","msg":"appended"}` + "\n")
	_ = f.Close()

	select {
	case e := <-entries:
		if e.Msg != "appended" {
			t.Errorf("expected appended entry, got %+v", e)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for followed entry")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Follow returned error: %v", err)
	}
}

// ============================================================================
// Writer Rotation Tests
// ============================================================================

func TestRotatingWriter_Rotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")

	// 0 MB rotates before every write to a non-empty file
	w, err := NewRotatingWriter(logPath, 0, 3)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	defer w.Close()

	for _, line := range []string{"first\n", "second\n", "third\n"} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	assertFile(t, logPath, "third\n")
	assertFile(t, logPath+".1", "second\n")
	assertFile(t, logPath+".2", "first\n")
}

func TestRotatingWriter_MaxFilesLimit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "maxfiles.log")

	w, err := NewRotatingWriter(logPath, 0, 2)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		_, _ = fmt.Fprintf(w, "line %d\n", i)
	}

	if _, err := os.Stat(logPath + ".3"); !os.IsNotExist(err) {
		t.Error("rotated file .3 should not exist (beyond maxFiles)")
	}
	assertFile(t, logPath+".2", "line 2\n")
	assertFile(t, logPath, "line 4\n")
}

func TestRotatingWriter_CloseTwice(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "close.log"), 1, 3)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close should be a no-op, got: %v", err)
	}
	if err := w.Sync(); err != nil {
		t.Errorf("sync after close should be a no-op, got: %v", err)
	}
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "concurrent.log")

	w, err := NewRotatingWriter(logPath, 10, 3)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	w.SetSyncEachWrite(false)
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = fmt.Fprintf(w, `{"id":%d,"iter":%d}`+"\n", id, j)
			}
		}(i)
	}
	wg.Wait()
	_ = w.Sync()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file should exist: %v", err)
	}
	if got := strings.Count(string(content), "\n"); got != 1000 {
		t.Errorf("expected 1000 lines, got %d", got)
	}
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(got) != want {
		t.Errorf("%s = %q, want %q", filepath.Base(path), got, want)
	}
}
