package account_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/accounts/account"
	"github.com/kbukum/accounts/component"
	"github.com/kbukum/accounts/database"
	"github.com/kbukum/accounts/database/dbtest"
	"github.com/kbukum/accounts/failure"
	"github.com/kbukum/accounts/logger"
	"github.com/kbukum/accounts/server"
)

type staticSource struct{ db *database.DB }

func (s staticSource) DB() *database.DB { return s.db }

func TestComponent_StartSeedsAndMounts(t *testing.T) {
	db := dbtest.Open(t, account.Models()...)
	engine := gin.New()
	d := server.NewDispatcher(failure.New(nil), nil, logger.Nop())
	c := account.NewComponent(staticSource{db}, engine.Group("/api"), d, account.SeedConfig{}, logger.Nop())

	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}

	for i := 0; i < 2; i++ {
		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("Start %d: %v", i+1, err)
		}
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %s", h.Status)
	}
	dbtest.AssertRowCount(t, db, "roles", 1)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/roles", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/roles = %d %s", w.Code, w.Body.String())
	}
	if got := c.Describe().Details; got != "routes=/api" {
		t.Errorf("details = %q", got)
	}
}

func TestComponent_StartWithoutDatabase(t *testing.T) {
	engine := gin.New()
	d := server.NewDispatcher(failure.New(nil), nil, logger.Nop())
	c := account.NewComponent(staticSource{}, engine.Group("/api"), d, account.SeedConfig{}, logger.Nop())

	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected error when the database is not started")
	}
}
