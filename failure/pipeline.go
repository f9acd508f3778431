package failure

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/accounts/errors"
	"github.com/kbukum/accounts/logger"
)

// Transaction is the request's transactional context as seen by the pipeline.
type Transaction interface {
	Rollback() error
}

// Recorder persists classified failures. Implementations must not panic and
// must absorb their own I/O failures.
type Recorder interface {
	Record(ctx context.Context, rec Record)
}

// Metrics receives failure counters.
type Metrics interface {
	RecordFailure(ctx context.Context, kind string, status int)
	RecordRollback(ctx context.Context, kind, outcome string)
}

// Rollback outcomes reported to Metrics.
const (
	RollbackOK      = "ok"
	RollbackFailed  = "failed"
	RollbackSkipped = "skipped"
)

// Pipeline classifies failures, applies the recovery policy, records the
// outcome and maps it to a client response. It holds no per-request state
// and is safe for concurrent use.
type Pipeline struct {
	recorder Recorder
	log      *logger.Logger
	metrics  Metrics
	now      func() time.Time
	newID    func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the operational logger used for rollback and recorder failures.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMetrics sets the failure metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock overrides the time source used for OccurredAt.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDGenerator overrides the record id generator.
func WithIDGenerator(gen func() string) Option {
	return func(p *Pipeline) { p.newID = gen }
}

// New creates a pipeline that records to recorder. A nil recorder drops records.
func New(recorder Recorder, opts ...Option) *Pipeline {
	p := &Pipeline{
		recorder: recorder,
		log:      logger.Nop(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithComponent("failure")
	return p
}

// Handle runs err through classification, rollback, audit and response
// mapping, in that order. tx may be nil when the request has no
// transactional context. Handle never panics and never returns an error;
// the returned response is fully determined by the failure's kind.
func (p *Pipeline) Handle(ctx context.Context, err error, tx Transaction) errors.Response {
	kind := errors.Classify(err)
	resp := errors.ToResponse(kind)

	rec := Record{
		ID:               p.newID(),
		Kind:             kind,
		Message:          recordMessage(kind, err, resp),
		OccurredAt:       p.now().UTC(),
		RequiresRollback: errors.RequiresRollback(kind),
		RequestID:        logger.RequestIDFromContext(ctx),
	}
	var tagged errors.Categorized
	if stderrors.As(err, &tagged) {
		rec.Category = tagged.Category()
	}
	var pe *PanicError
	if kind == errors.KindUnclassified && stderrors.As(err, &pe) {
		rec.Stack = string(pe.Stack)
	}

	if rec.RequiresRollback {
		p.rollback(ctx, tx, &rec)
	}
	p.record(ctx, rec)
	p.observe(ctx, rec, resp.Status, err)

	return resp
}

// recordMessage keeps the underlying text only for unclassified failures;
// every other kind is recorded with its fixed message.
func recordMessage(kind errors.Kind, err error, resp errors.Response) string {
	if kind != errors.KindUnclassified {
		return resp.Body.Text()
	}
	if err == nil {
		return "unknown failure"
	}
	return err.Error()
}

func (p *Pipeline) rollback(ctx context.Context, tx Transaction, rec *Record) {
	outcome := RollbackSkipped
	defer func() {
		if p.metrics != nil {
			p.metrics.RecordRollback(ctx, rec.Kind.String(), outcome)
		}
	}()
	if tx == nil {
		return
	}

	err := safeRollback(tx)
	if err != nil {
		outcome = RollbackFailed
		rec.RollbackError = err.Error()
		p.log.WithContext(ctx).Error("rollback failed", logger.Fields(
			logger.FieldKind, rec.Kind.String(),
			logger.FieldError, err.Error(),
		))
		return
	}
	outcome = RollbackOK
	rec.RolledBack = true
}

func safeRollback(tx Transaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rollback panicked: %v", r)
		}
	}()
	return tx.Rollback()
}

func (p *Pipeline) record(ctx context.Context, rec Record) {
	if p.recorder == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.WithContext(ctx).Error("failure recorder panicked", logger.Fields(
				"record_id", rec.ID,
				logger.FieldError, fmt.Sprintf("%v", r),
			))
		}
	}()
	p.recorder.Record(ctx, rec)
}

func (p *Pipeline) observe(ctx context.Context, rec Record, status int, err error) {
	if p.metrics != nil {
		p.metrics.RecordFailure(ctx, rec.Kind.String(), status)
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.String("failure.kind", rec.Kind.String()),
		attribute.String("failure.id", rec.ID),
		attribute.Bool("failure.rolled_back", rec.RolledBack),
	)
	if err != nil {
		span.RecordError(err)
	}
	span.SetStatus(codes.Error, rec.Kind.String())
}
