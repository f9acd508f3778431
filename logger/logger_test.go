package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewWithWriter(&buf, &Config{Level: level, Format: "json"}, "accounts"), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	return m
}

func TestNewWithWriter_JSON(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")
	l.Info("hello", Fields("op", "save", "id", 42))

	m := decodeLine(t, buf)
	if m["message"] != "hello" {
		t.Errorf("expected message 'hello', got %v", m["message"])
	}
	if m[FieldService] != "accounts" {
		t.Errorf("expected service 'accounts', got %v", m[FieldService])
	}
	if m["op"] != "save" || m["id"] != float64(42) {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestNewWithWriter_Level(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
	l.Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("expected error to be written")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l, buf := newBufferLogger(t, "invalid-level")
	l.Debug("dropped")
	l.Info("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected fallback to info level, got %q", buf.String())
	}
}

func TestWithComponentAndFields(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.WithComponent("audit").WithFields(Fields("sink", "file")).WithError(errors.New("disk full")).Warn("write failed")

	m := decodeLine(t, buf)
	if m[FieldComponent] != "audit" || m["sink"] != "file" || m[FieldError] != "disk full" {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestWithContext(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "7")
	l.WithContext(ctx).Info("scoped")

	m := decodeLine(t, buf)
	if m[FieldRequestID] != "req-1" || m[FieldUserID] != "7" {
		t.Errorf("unexpected fields %v", m)
	}
	if _, ok := m[FieldTraceID]; ok {
		t.Error("expected no trace id without a span")
	}
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	if id := RequestIDFromContext(context.Background()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "info", Format: "console", NoColor: true}, "accounts")
	l.Warn("careful", Fields("k", "v"))
	out := buf.String()
	if !strings.Contains(out, "[WRN]") || !strings.Contains(out, "k:v") {
		t.Errorf("unexpected console output %q", out)
	}
	if strings.Contains(out, "service:") {
		t.Errorf("service field should be excluded from console output: %q", out)
	}
}

func TestNop(t *testing.T) {
	Nop().Error("nothing")
}

func TestInitAndGlobal(t *testing.T) {
	prev := globalLogger
	t.Cleanup(func() { globalLogger = prev })

	l := Init(Config{Format: "json"}, "svc")
	if GetGlobalLogger() != l {
		t.Error("Init should set the default logger")
	}
	SetGlobalLogger(nil)
	if GetGlobalLogger() == nil {
		t.Error("expected a default logger to be created")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" || !cfg.Timestamp {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"pretty", Config{Level: "debug", Format: "pretty", Output: "stderr"}, false},
		{"bad level", Config{Level: "loud", Format: "json", Output: "stdout"}, true},
		{"bad format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"bad output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, 2, "ignored", "dangling")
	if len(m) != 1 || m["a"] != 1 {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestErrorFields(t *testing.T) {
	m := ErrorFields("commit", errors.New("boom"))
	if m[FieldOperation] != "commit" || m[FieldError] != "boom" {
		t.Errorf("unexpected fields %v", m)
	}
}
