// Package redis provides a go-redis client wrapper with logging,
// connection pooling and component lifecycle support. The audit package
// uses it to append failure records to a Redis stream.
//
//	comp := redis.NewComponent(cfg, log)
//	registry.Register(comp)
//	...
//	id, err := comp.Client().XAppend(ctx, "audit:failures", 10000, fields)
package redis
