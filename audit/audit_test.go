package audit

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/accounts/component"
	accerrors "github.com/kbukum/accounts/errors"
	"github.com/kbukum/accounts/failure"
	"github.com/kbukum/accounts/logger"
	"github.com/kbukum/accounts/redis"
)

func sampleRecord(id string) failure.Record {
	return failure.Record{
		ID:               id,
		Kind:             accerrors.KindUniqueConstraintViolation,
		Category:         accerrors.CategoryIntegrity,
		Message:          "Integrity error: Duplicate entry or constraint violation",
		OccurredAt:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		RequiresRollback: true,
		RolledBack:       true,
		RequestID:        "req-1",
	}
}

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var out []map[string]interface{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var m map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %q is not a single JSON record: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

type failingSink struct{ closed bool }

func (f *failingSink) Write(context.Context, failure.Record) error { return errors.New("disk full") }
func (f *failingSink) Close() error                               { f.closed = true; return nil }

type panickingSink struct{}

func (panickingSink) Write(context.Context, failure.Record) error { panic("broken sink") }
func (panickingSink) Close() error                               { return nil }

type memSink struct {
	mu   sync.Mutex
	recs []failure.Record
}

func (m *memSink) Write(_ context.Context, rec failure.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}
func (m *memSink) Close() error { return nil }

func TestFileSink_AppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	rec := sampleRecord("a")
	rec.Stack = "goroutine 1 [running]"
	if err := sink.Write(context.Background(), rec); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := sink.Write(context.Background(), sampleRecord("b")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	sink.Close()

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	first := lines[0]
	if first["kind"] != "UNIQUE_CONSTRAINT_VIOLATION" || first["id"] != "a" {
		t.Errorf("unexpected line %v", first)
	}
	if first["message"] != "Integrity error: Duplicate entry or constraint violation" {
		t.Errorf("unexpected message %v", first["message"])
	}
	if first["occurred_at"] != "2024-05-01T12:00:00Z" || first["level"] != "error" {
		t.Errorf("unexpected timestamp/level %v", first)
	}
	if first["stack"] != "goroutine 1 [running]" || first["rolled_back"] != true {
		t.Errorf("unexpected fields %v", first)
	}
	if _, ok := lines[1]["stack"]; ok {
		t.Error("stack should be omitted when empty")
	}
}

func TestFileSink_ReopenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	for i := 0; i < 2; i++ {
		sink, err := NewFileSink(path)
		if err != nil {
			t.Fatalf("NewFileSink failed: %v", err)
		}
		sink.Write(context.Background(), sampleRecord(fmt.Sprint(i)))
		sink.Close()
	}
	if n := len(readLines(t, path)); n != 2 {
		t.Errorf("expected 2 lines after reopen, got %d", n)
	}
}

func TestFileSink_ConcurrentAppendsDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	const writers, perWriter = 16, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				rec := sampleRecord(fmt.Sprintf("%d-%d", w, i))
				rec.Kind = accerrors.KindUnclassified
				rec.Message = strings.Repeat("x", 2048)
				if err := sink.Write(context.Background(), rec); err != nil {
					t.Errorf("Write failed: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()
	sink.Close()

	lines := readLines(t, path)
	if len(lines) != writers*perWriter {
		t.Fatalf("expected %d records, got %d", writers*perWriter, len(lines))
	}
	seen := make(map[interface{}]bool)
	for _, l := range lines {
		seen[l["id"]] = true
	}
	if len(seen) != writers*perWriter {
		t.Errorf("expected unique ids, got %d", len(seen))
	}
}

func TestNewFileSink_BadPath(t *testing.T) {
	if _, err := NewFileSink(filepath.Join(t.TempDir(), "missing", "error.log")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)
	sink.Write(context.Background(), sampleRecord("w"))
	if err := sink.Close(); err != nil {
		t.Errorf("Close on writer sink should be a no-op, got %v", err)
	}
	if !strings.Contains(buf.String(), `"id":"w"`) || !strings.HasSuffix(buf.String(), "\n") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRedisSink(t *testing.T) {
	mini := miniredis.RunT(t)
	client, err := redis.New(redis.Config{Enabled: true, Addr: mini.Addr()}, logger.Nop())
	if err != nil {
		t.Fatalf("redis.New failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	sink := NewRedisSink(client, "audit:failures", 100)
	if err := sink.Write(context.Background(), sampleRecord("r")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	entries, err := mini.Stream("audit:failures")
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 stream entry, got %v (%v)", entries, err)
	}
	values := map[string]string{}
	for i := 0; i+1 < len(entries[0].Values); i += 2 {
		values[entries[0].Values[i]] = entries[0].Values[i+1]
	}
	if values["kind"] != "UNIQUE_CONSTRAINT_VIOLATION" || values["request_id"] != "req-1" {
		t.Errorf("unexpected entry %v", values)
	}
	if _, ok := values["stack"]; ok {
		t.Error("empty stack should not be written")
	}
}

func TestMultiSink_JoinsErrors(t *testing.T) {
	mem := &memSink{}
	bad := &failingSink{}
	m := MultiSink{bad, mem}

	err := m.Write(context.Background(), sampleRecord("m"))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected joined error, got %v", err)
	}
	if len(mem.recs) != 1 {
		t.Error("healthy sinks must still receive the record")
	}
	m.Close()
	if !bad.closed {
		t.Error("expected every sink to be closed")
	}
}

func TestLogger_Record(t *testing.T) {
	mem := &memSink{}
	NewLogger(mem, nil).Record(context.Background(), sampleRecord("x"))
	if len(mem.recs) != 1 || mem.recs[0].ID != "x" {
		t.Errorf("unexpected records %+v", mem.recs)
	}
}

func TestLogger_SinkFailureIsLoggedNotRaised(t *testing.T) {
	for name, sink := range map[string]Sink{"error": &failingSink{}, "panic": panickingSink{}} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, &logger.Config{Level: "info", Format: "json"}, "test")

			NewLogger(sink, log).Record(context.Background(), sampleRecord("x"))

			if !strings.Contains(buf.String(), "audit write failed") {
				t.Errorf("expected failure on the operational log, got %q", buf.String())
			}
		})
	}
}

func TestLogger_NoSink(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, &logger.Config{Level: "info", Format: "json"}, "test")
	NewLogger(nil, log).Record(context.Background(), sampleRecord("x"))
	if !strings.Contains(buf.String(), "record dropped") {
		t.Errorf("expected drop warning, got %q", buf.String())
	}
}

func TestLogger_PipelineResponseUnaffectedBySink(t *testing.T) {
	err := accerrors.Integrity(errors.New("UNIQUE constraint failed: users.username"))
	want := failure.New(NewLogger(&memSink{}, nil)).Handle(context.Background(), err, nil)
	got := failure.New(NewLogger(&failingSink{}, nil)).Handle(context.Background(), err, nil)
	if got.Status != want.Status || got.Body.Text() != want.Body.Text() {
		t.Errorf("failing sink changed the response: %+v vs %+v", got, want)
	}
}

func TestComponent_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	comp := NewComponent(Config{Sink: SinkFile, Path: path}, nil, logger.Nop())
	ctx := context.Background()

	if h := comp.Health(ctx); h.Status != component.StatusDegraded {
		t.Errorf("expected degraded before start, got %s", h.Status)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s", h.Status)
	}
	comp.Logger().Record(ctx, sampleRecord("c"))
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if n := len(readLines(t, path)); n != 1 {
		t.Errorf("expected 1 line, got %d", n)
	}
	if d := comp.Describe(); d.Details != "file "+path {
		t.Errorf("unexpected description %+v", d)
	}
}

func TestComponent_MultiSink(t *testing.T) {
	mini := miniredis.RunT(t)
	rc := redis.NewComponent(redis.Config{Enabled: true, Addr: mini.Addr()}, logger.Nop())
	ctx := context.Background()
	if err := rc.Start(ctx); err != nil {
		t.Fatalf("redis start: %v", err)
	}
	t.Cleanup(func() { rc.Stop(ctx) })

	path := filepath.Join(t.TempDir(), "error.log")
	comp := NewComponent(Config{Sink: SinkMulti, Path: path}, rc, logger.Nop())
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	comp.Logger().Record(ctx, sampleRecord("m"))
	comp.Stop(ctx)

	if n := len(readLines(t, path)); n != 1 {
		t.Errorf("expected 1 file line, got %d", n)
	}
	entries, _ := mini.Stream("audit:failures")
	if len(entries) != 1 {
		t.Errorf("expected 1 stream entry, got %d", len(entries))
	}
}

func TestComponent_RedisSinkWithoutRedis(t *testing.T) {
	comp := NewComponent(Config{Sink: SinkRedis}, nil, logger.Nop())
	if err := comp.Start(context.Background()); err == nil {
		t.Error("expected error without a redis component")
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Sink != SinkFile || cfg.Path != "error.log" || cfg.Stream != "audit:failures" {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"file", Config{Sink: SinkFile, Path: "e.log"}, false},
		{"stdout", Config{Sink: SinkStdout}, false},
		{"unknown sink", Config{Sink: "kafka"}, true},
		{"redis without stream", Config{Sink: SinkRedis}, true},
		{"negative max len", Config{Sink: SinkStdout, MaxLen: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
