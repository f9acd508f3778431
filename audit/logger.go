package audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/accounts/failure"
	"github.com/kbukum/accounts/logger"
)

// Logger is the failure.Recorder backed by a Sink.
type Logger struct {
	mu   sync.RWMutex
	sink Sink
	log  *logger.Logger
}

var _ failure.Recorder = (*Logger)(nil)

// NewLogger creates a logger writing to sink. sink may be nil until SetSink is called.
func NewLogger(sink Sink, log *logger.Logger) *Logger {
	if log == nil {
		log = logger.Nop()
	}
	return &Logger{sink: sink, log: log.WithComponent("audit")}
}

// SetSink replaces the sink and returns the previous one.
func (l *Logger) SetSink(s Sink) Sink {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.sink
	l.sink = s
	return prev
}

// Record writes rec to the sink once. Failures are logged and dropped.
func (l *Logger) Record(ctx context.Context, rec failure.Record) {
	l.mu.RLock()
	sink := l.sink
	l.mu.RUnlock()

	if sink == nil {
		l.log.Warn("audit sink not configured, record dropped", logger.Fields(
			"record_id", rec.ID,
			logger.FieldKind, rec.Kind.String(),
		))
		return
	}

	if err := safeWrite(ctx, sink, rec); err != nil {
		l.log.WithContext(ctx).Error("audit write failed", logger.Fields(
			"record_id", rec.ID,
			logger.FieldKind, rec.Kind.String(),
			logger.FieldError, err.Error(),
		))
	}
}

func safeWrite(ctx context.Context, s Sink, rec failure.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audit sink panicked: %v", r)
		}
	}()
	return s.Write(ctx, rec)
}
