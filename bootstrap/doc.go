// Package bootstrap runs a service through its lifecycle: start components
// in registration order, run start hooks and configure callbacks, wait for
// a shutdown signal, then stop everything in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(dbComp)
//	app.OnStart(func(ctx context.Context) error { return seed(ctx) })
//	err = app.Run(ctx)
package bootstrap
