// Command accounts serves the user and role API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/accounts/account"
	"github.com/kbukum/accounts/audit"
	"github.com/kbukum/accounts/bootstrap"
	"github.com/kbukum/accounts/component"
	"github.com/kbukum/accounts/config"
	"github.com/kbukum/accounts/database"
	"github.com/kbukum/accounts/failure"
	"github.com/kbukum/accounts/observability"
	"github.com/kbukum/accounts/redis"
	"github.com/kbukum/accounts/server"
)

const serviceName = "accounts"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return err
	}
	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}
	if err := wire(app); err != nil {
		return err
	}
	return app.Run(ctx)
}

// wire registers the components in start order: telemetry, storage, the
// audit sink, the account routes and finally the HTTP server.
func wire(app *bootstrap.App[*Config]) error {
	cfg, log := app.Cfg, app.Logger

	obs := observability.NewComponent(cfg.Name, cfg.Observability, log)
	db := database.NewComponent(cfg.Database, log).WithAutoMigrate(account.Models()...)

	var redisComp *redis.Component
	if cfg.Redis.Enabled {
		redisComp = redis.NewComponent(cfg.Redis, log)
	}
	auditComp := audit.NewComponent(cfg.Audit, redisComp, log)

	failureMetrics, err := observability.NewFailureMetrics(observability.Meter())
	if err != nil {
		return fmt.Errorf("failure metrics: %w", err)
	}
	httpMetrics, err := observability.NewHTTPMetrics(observability.Meter())
	if err != nil {
		return fmt.Errorf("http metrics: %w", err)
	}

	pipeline := failure.New(auditComp.Logger(),
		failure.WithLogger(log),
		failure.WithMetrics(failureMetrics),
	)
	scope := func(ctx context.Context) (context.Context, server.TxScope) {
		c, s := db.DB().NewScope(ctx)
		return c, s
	}
	dispatcher := server.NewDispatcher(pipeline, scope, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(pipeline, dispatcher, httpMetrics)
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll)

	accounts := account.NewComponent(db, srv.GinEngine().Group("/api"), dispatcher, cfg.Account, log)

	components := []component.Component{obs, db}
	if redisComp != nil {
		components = append(components, redisComp)
	}
	components = append(components, auditComp, accounts, server.NewComponent(srv))
	for _, c := range components {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}
	return nil
}
