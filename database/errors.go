package database

import (
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/kbukum/accounts/errors"
)

// Translate tags a persistence failure with its store category. Detection
// is by sentinel identity and driver error code only. Record-not-found
// becomes a protocol-level not-found for resource. Failures that match no
// rule are returned unchanged and classify as unclassified.
func Translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) {
		return err
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(resource, "").WithCause(err)
	}

	switch category(err) {
	case errors.CategoryIntegrity:
		return errors.Integrity(err)
	case errors.CategoryData:
		return errors.DataFormat(err)
	case errors.CategoryOperational:
		return errors.ConnectionFailed(err)
	case errors.CategoryProgramming:
		return errors.QueryDefinition(err)
	}
	return err
}

// gormCategories is checked in order; the first sentinel in the chain wins.
var gormCategories = []struct {
	sentinel error
	category errors.Category
}{
	{gorm.ErrDuplicatedKey, errors.CategoryIntegrity},
	{gorm.ErrForeignKeyViolated, errors.CategoryIntegrity},
	{gorm.ErrCheckConstraintViolated, errors.CategoryIntegrity},
	{gorm.ErrInvalidData, errors.CategoryData},
	{gorm.ErrInvalidField, errors.CategoryData},
	{gorm.ErrInvalidTransaction, errors.CategoryProgramming},
	{gorm.ErrNotImplemented, errors.CategoryProgramming},
	{gorm.ErrMissingWhereClause, errors.CategoryProgramming},
	{gorm.ErrUnsupportedRelation, errors.CategoryProgramming},
	{gorm.ErrPrimaryKeyRequired, errors.CategoryProgramming},
	{gorm.ErrModelValueRequired, errors.CategoryProgramming},
	{gorm.ErrUnsupportedDriver, errors.CategoryProgramming},
	{gorm.ErrInvalidValue, errors.CategoryProgramming},
	{gorm.ErrInvalidValueOfLength, errors.CategoryProgramming},
	{sql.ErrTxDone, errors.CategoryProgramming},
	{driver.ErrBadConn, errors.CategoryOperational},
	{sql.ErrConnDone, errors.CategoryOperational},
}

var sqliteCategories = map[sqlite3.ErrNo]errors.Category{
	sqlite3.ErrConstraint: errors.CategoryIntegrity,
	sqlite3.ErrTooBig:     errors.CategoryData,
	sqlite3.ErrMismatch:   errors.CategoryData,
	sqlite3.ErrRange:      errors.CategoryData,
	sqlite3.ErrCantOpen:   errors.CategoryOperational,
	sqlite3.ErrIoErr:      errors.CategoryOperational,
	sqlite3.ErrNotADB:     errors.CategoryOperational,
	sqlite3.ErrBusy:       errors.CategoryOperational,
	sqlite3.ErrCorrupt:    errors.CategoryOperational,
	sqlite3.ErrError:      errors.CategoryProgramming,
}

// SQLSTATE classes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
var sqlStateCategories = map[string]errors.Category{
	"23": errors.CategoryIntegrity,
	"22": errors.CategoryData,
	"08": errors.CategoryOperational,
	"53": errors.CategoryOperational,
	"57": errors.CategoryOperational,
	"42": errors.CategoryProgramming,
}

func category(err error) errors.Category {
	for _, g := range gormCategories {
		if stderrors.Is(err, g.sentinel) {
			return g.category
		}
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		return sqlStateCategories[pgErr.Code[:2]]
	}
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteCategories[sqliteErr.Code]
	}
	var connErr *pgconn.ConnectError
	if stderrors.As(err, &connErr) {
		return errors.CategoryOperational
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return errors.CategoryOperational
	}
	return ""
}
