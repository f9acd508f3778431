package account

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/accounts/component"
	"github.com/kbukum/accounts/database"
	"github.com/kbukum/accounts/logger"
	"github.com/kbukum/accounts/server"
)

// DBSource yields the database once its component has started.
type DBSource interface {
	DB() *database.DB
}

// Component seeds the admin role and mounts the account routes once the
// database is up. Register it after the database component and before the
// HTTP server.
type Component struct {
	source     DBSource
	routes     *gin.RouterGroup
	dispatcher *server.Dispatcher
	seed       SeedConfig
	log        *logger.Logger
	started    atomic.Bool
}

var _ component.Component = (*Component)(nil)

// NewComponent creates the account component. Routes are mounted on routes.
func NewComponent(source DBSource, routes *gin.RouterGroup, d *server.Dispatcher, seed SeedConfig, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	return &Component{
		source:     source,
		routes:     routes,
		dispatcher: d,
		seed:       seed,
		log:        log.WithComponent("account"),
	}
}

// Name returns the component name.
func (c *Component) Name() string { return "account" }

// Start seeds the database and registers the handlers. Routes are mounted
// once; a restarted component only seeds.
func (c *Component) Start(ctx context.Context) error {
	db := c.source.DB()
	if db == nil {
		return fmt.Errorf("account: database is not started")
	}
	if err := Seed(ctx, db, c.seed, c.log); err != nil {
		return fmt.Errorf("account seed: %w", err)
	}
	if c.started.CompareAndSwap(false, true) {
		NewHandler(NewRepository(db), c.log).Register(c.routes, c.dispatcher)
	}
	return nil
}

// Stop is a no-op; the database component owns the connection.
func (c *Component) Stop(context.Context) error { return nil }

// Health reports whether the routes are mounted.
func (c *Component) Health(context.Context) component.Health {
	if !c.started.Load() {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "routes not mounted"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns a startup summary.
func (c *Component) Describe() component.Description {
	details := "routes=" + c.routes.BasePath()
	if c.seed.AdminUsername != "" {
		details += " admin=" + c.seed.AdminUsername
	}
	return component.Description{Name: "Accounts", Type: "handler", Details: details}
}
