// Package dbtest opens isolated in-memory SQLite databases for tests.
//
//	db := dbtest.Open(t, &account.User{}, &account.Role{})
//	dbtest.AssertRowCount(t, db, "users", 0)
package dbtest

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"gorm.io/gorm"

	"github.com/kbukum/accounts/database"
	"github.com/kbukum/accounts/logger"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Config returns a database config for a private in-memory database named after name.
func Config(name string) database.Config {
	return database.Config{
		Enabled:         true,
		Driver:          database.DriverSQLite,
		DSN:             fmt.Sprintf("file:%s?mode=memory&cache=shared", unsafeName.ReplaceAllString(name, "_")),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxIdleTime: "1h",
		MaxRetries:      1,
		LogLevel:        "silent",
	}
}

// Open creates a fresh database private to t, migrates models and closes it on cleanup.
func Open(t testing.TB, models ...interface{}) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), Config(t.Name()), logger.Nop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("auto-migrate: %v", err)
		}
	}
	return db
}

// CountRows returns the number of rows in a table.
func CountRows(db *gorm.DB, table string) (int64, error) {
	var count int64
	err := db.Table(table).Count(&count).Error
	return count, err
}

// AssertRowCount fails the test if the table doesn't have the expected row count.
func AssertRowCount(t testing.TB, db *database.DB, table string, expected int64) {
	t.Helper()
	count, err := CountRows(db.Gorm(), table)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	if count != expected {
		t.Errorf("table %s row count = %d, want %d", table, count, expected)
	}
}
