package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"
)

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Service   string `json:"service,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

func TestLoggerPrintfIncludesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test-service")

	ctx := WithCorrelationID(context.Background(), "trace-123")
	logger.Printf(ctx, "hello %s", "world")

	var entry logEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal log entry: %v", err)
	}

	if entry.Level != "info" {
		t.Fatalf("expected level info, got %s", entry.Level)
	}
	if entry.Message != "hello world" {
		t.Fatalf("unexpected message: %s", entry.Message)
	}
	if entry.Service != "test-service" {
		t.Fatalf("unexpected service: %s", entry.Service)
	}
	if entry.TraceID != "trace-123" {
		t.Fatalf("expected trace id trace-123, got %s", entry.TraceID)
	}
	if strings.TrimSpace(entry.Timestamp) == "" {
		t.Fatalf("expected timestamp to be populated")
	}
}

func TestLoggerPrintlnOmitsEmptyTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "")

	logger.Println(context.Background(), "message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}

	if _, exists := entry["trace_id"]; exists {
		t.Fatalf("expected trace_id to be omitted")
	}
	if _, exists := entry["service"]; exists {
		t.Fatalf("expected service to be omitted")
	}
	if entry["message"] != "message" {
		t.Fatalf("unexpected message: %v", entry["message"])
	}
}

func TestLoggerErrorfLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "svc")

	logger.Errorf(context.Background(), "poll failed: %d", 500)

	var entry logEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	if entry.Level != "error" {
		t.Fatalf("expected level error, got %s", entry.Level)
	}
}

func TestLoggerLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(&buf, "svc", "info", "json")

	logger.Debugf(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug entry to be filtered, got %q", buf.String())
	}

	logger = NewLoggerWithOptions(&buf, "svc", "debug", "json")
	logger.Debugf(context.Background(), "shown")
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Fatalf("expected debug entry, got %q", buf.String())
	}
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(&buf, "svc", "info", "text")

	logger.Printf(context.Background(), "plain %s", "text")

	out := buf.String()
	if !strings.Contains(out, "plain text") {
		t.Fatalf("expected message in text output, got %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected non-JSON output, got %q", out)
	}
}

func TestNewLoggerDefaults(t *testing.T) {
	logger := NewLogger(nil, " ")
	if logger == nil {
		t.Fatal("expected logger to be created")
	}
	logger.Printf(context.Background(), "hello")
	logger.Printf(nil, "nil context") //nolint:staticcheck
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Printf(context.Background(), "ignored")
	logger.Println(context.Background(), "ignored")
	logger.Errorf(context.Background(), "ignored")
	if logger.Slog() == nil {
		t.Fatal("expected fallback slog logger")
	}
}

func TestWithCorrelationIDHandlesNilContext(t *testing.T) {
	ctx := WithCorrelationID(nil, " id ") //nolint:staticcheck
	if got := CorrelationIDFromContext(ctx); got != "id" {
		t.Fatalf("expected id, got %s", got)
	}
}

func TestCorrelationIDFromContextMissing(t *testing.T) {
	if CorrelationIDFromContext(nil) != "" { //nolint:staticcheck
		t.Fatalf("expected empty id")
	}
}

func TestLoggerFatalfExits(t *testing.T) {
	if os.Getenv("LOGGER_FATALF_SUBPROCESS") == "1" {
		logger := NewLogger(os.Stdout, "test")
		logger.Fatalf(context.Background(), "fatal")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestLoggerFatalfExits")
	cmd.Env = append(os.Environ(), "LOGGER_FATALF_SUBPROCESS=1")

	out, err := cmd.Output()
	if err == nil {
		t.Fatalf("expected process to exit with error")
	}
	if !strings.Contains(string(out), `"level":"fatal"`) {
		t.Fatalf("expected fatal level entry, got %q", string(out))
	}
}
