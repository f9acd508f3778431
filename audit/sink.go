package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kbukum/accounts/failure"
)

// Sink is a durable destination for failure records.
type Sink interface {
	Write(ctx context.Context, rec failure.Record) error
	Close() error
}

// FileSink appends one JSON line per record. Each record is encoded in full
// and handed to the underlying writer in a single Write under a mutex, so
// concurrent records never interleave.
type FileSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewFileSink opens path for appending, creating it when missing.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log %s: %w", path, err)
	}
	return &FileSink{w: f, closer: f}, nil
}

// NewWriterSink appends records to w. w is not closed by Close.
func NewWriterSink(w io.Writer) *FileSink {
	return &FileSink{w: w}
}

func (s *FileSink) Write(_ context.Context, rec failure.Record) error {
	line := encodeLine(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func encodeLine(rec failure.Record) []byte {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ev := logger.Error().
		Str("occurred_at", rec.OccurredAt.Format(time.RFC3339Nano)).
		Str("id", rec.ID).
		Str("kind", rec.Kind.String()).
		Bool("requires_rollback", rec.RequiresRollback).
		Bool("rolled_back", rec.RolledBack)
	if rec.Category != "" {
		ev = ev.Str("category", string(rec.Category))
	}
	if rec.RollbackError != "" {
		ev = ev.Str("rollback_error", rec.RollbackError)
	}
	if rec.RequestID != "" {
		ev = ev.Str("request_id", rec.RequestID)
	}
	if rec.Stack != "" {
		ev = ev.Str("stack", rec.Stack)
	}
	ev.Msg(rec.Message)
	return buf.Bytes()
}

// StreamAppender appends entries to a stream. *redis.Client implements it.
type StreamAppender interface {
	XAppend(ctx context.Context, stream string, maxLen int64, values map[string]interface{}) (string, error)
}

// RedisSink adds one stream entry per record.
type RedisSink struct {
	client StreamAppender
	stream string
	maxLen int64
}

// NewRedisSink creates a sink writing to stream through client.
func NewRedisSink(client StreamAppender, stream string, maxLen int64) *RedisSink {
	return &RedisSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisSink) Write(ctx context.Context, rec failure.Record) error {
	values := map[string]interface{}{
		"id":                rec.ID,
		"kind":              rec.Kind.String(),
		"message":           rec.Message,
		"occurred_at":       rec.OccurredAt.Format(time.RFC3339Nano),
		"requires_rollback": strconv.FormatBool(rec.RequiresRollback),
		"rolled_back":       strconv.FormatBool(rec.RolledBack),
	}
	for k, v := range map[string]string{
		"category":       string(rec.Category),
		"rollback_error": rec.RollbackError,
		"request_id":     rec.RequestID,
		"stack":          rec.Stack,
	} {
		if v != "" {
			values[k] = v
		}
	}
	_, err := s.client.XAppend(ctx, s.stream, s.maxLen, values)
	return err
}

// Close is a no-op; the Redis connection is owned by its component.
func (s *RedisSink) Close() error { return nil }

// MultiSink writes every record to each of its sinks.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, rec failure.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
