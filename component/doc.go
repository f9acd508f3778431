// Package component defines the lifecycle interface shared by the
// service's infrastructure (database, redis, audit sink, HTTP server) and
// an ordered registry that starts, stops and health-checks them.
package component
