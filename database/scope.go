package database

import (
	"context"
	stderrors "errors"
	"sync"

	"gorm.io/gorm"

	"github.com/kbukum/accounts/errors"
	"github.com/kbukum/accounts/logger"
)

// Scope is the transactional context of one request. The transaction is
// begun on first use; requests that never touch the store never open one.
// A Scope is owned by a single request and must be released on every exit
// path.
type Scope struct {
	mu   sync.Mutex
	ctx  context.Context
	db   *gorm.DB
	log  *logger.Logger
	tx   *gorm.DB
	done bool
}

type scopeKey struct{}

// NewScope creates a scope for ctx and returns a context carrying it.
func (d *DB) NewScope(ctx context.Context) (context.Context, *Scope) {
	s := &Scope{ctx: ctx, db: d.gorm, log: d.log}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// ScopeFromContext returns the scope bound to ctx, or nil.
func ScopeFromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// Tx returns the scope's transaction, beginning it when needed.
func (s *Scope) Tx() (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return nil, Translate(gorm.ErrInvalidTransaction, "")
	}
	if s.tx == nil {
		tx := s.db.WithContext(s.ctx).Begin()
		if tx.Error != nil {
			return nil, Translate(tx.Error, "")
		}
		s.tx = tx
	}
	return s.tx, nil
}

// Begun reports whether a transaction was opened.
func (s *Scope) Begun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx != nil
}

// Commit commits the transaction, if one was begun. The returned error is
// already translated.
func (s *Scope) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil || s.done {
		s.done = true
		return nil
	}
	s.done = true
	return Translate(s.tx.Commit().Error, "")
}

// Rollback rolls back the transaction. It is a no-op returning nil when no
// transaction was begun or the scope is already finished.
func (s *Scope) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil || s.done {
		s.done = true
		return nil
	}
	s.done = true
	err := s.tx.Rollback().Error
	if stderrors.Is(err, gorm.ErrInvalidTransaction) {
		return nil
	}
	return err
}

// Release closes an unfinished transaction so its connection returns to the
// pool. Failures are logged, never returned. A rollback that fails because
// the connection is gone is expected after a connection failure and is
// logged at debug level.
func (s *Scope) Release() {
	err := s.Rollback()
	if err == nil {
		return
	}
	log := s.log.WithContext(s.ctx)
	fields := logger.Fields(logger.FieldError, err.Error())
	if errors.HasCategory(Translate(err, ""), errors.CategoryOperational) {
		log.Debug("releasing transaction on a lost connection", fields)
		return
	}
	log.Warn("releasing transaction failed", fields)
}
