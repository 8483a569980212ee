package logx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/shaverlee/gearbox/core/log"
)

func TestLogfmtOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithFormat(FormatLogfmt))

	logger.Info("environment loaded", log.Int("keys", 7), log.Str("app", "blog"))

	line := buf.String()
	if !strings.Contains(line, "level=INFO") {
		t.Fatalf("missing level: %q", line)
	}
	if !strings.Contains(line, `msg="environment loaded"`) {
		t.Fatalf("missing message: %q", line)
	}
	// Fields are sorted, so app precedes keys.
	if strings.Index(line, "app=") > strings.Index(line, "keys=") {
		t.Fatalf("fields not sorted: %q", line)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithFormat(FormatJSON))

	logger.Warn("slow request", log.Str("path", "/admin"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["level"] != "WARN" || record["msg"] != "slow request" {
		t.Fatalf("unexpected record: %v", record)
	}
	if record["path"] != "/admin" {
		t.Fatalf("field lost: %v", record)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithLevel(slog.LevelWarn))

	logger.Debug("hidden")
	logger.Info("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("records below level emitted: %q", buf.String())
	}

	logger.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatal("warn record should be emitted")
	}
}

func TestErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))

	logger.Error(errFake("engine down"), "storage setup failed")
	line := buf.String()
	if !strings.Contains(line, "level=ERROR") || !strings.Contains(line, "engine down") {
		t.Fatalf("error record incomplete: %q", line)
	}
}

func TestWithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf)).With(log.Str("component", "builder"))

	logger.Info("blueprint updated")
	if !strings.Contains(buf.String(), `component="builder"`) {
		t.Fatalf("attached field missing: %q", buf.String())
	}
}

func TestSensitiveFieldMasking(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithSensitiveFields("cookie_secret"))

	logger.Info("auth configured", log.Str("cookie_secret", "hunter2"), log.Str("cookie_name", "authtkt"))

	line := buf.String()
	if strings.Contains(line, "hunter2") {
		t.Fatalf("secret leaked: %q", line)
	}
	if !strings.Contains(line, `cookie_secret="***"`) {
		t.Fatalf("secret not masked: %q", line)
	}
	if !strings.Contains(line, `cookie_name="authtkt"`) {
		t.Fatalf("non-sensitive field affected: %q", line)
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }
