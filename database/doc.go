// Package database wraps GORM with connection pooling, retrying connect,
// a request-scoped transactional context and translation of driver errors
// into tagged store failures.
//
// Two drivers are supported: "postgres" (pgx) and "sqlite".
//
//	comp := database.NewComponent(cfg, log).WithAutoMigrate(&account.User{}, &account.Role{})
//	...
//	ctx, scope := comp.DB().NewScope(ctx)
//	defer scope.Release()
//	conn, err := comp.DB().Conn(ctx)
//
// Failures returned by GORM or the driver must pass through Translate
// before they leave the persistence layer, so the failure pipeline can
// classify them by category.
package database
