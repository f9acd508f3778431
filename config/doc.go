// Package config loads service configuration with Viper.
//
// config.yml and .env files are searched for in the standard locations
// (cmd/<service>/, config/, the working directory). Environment variables
// override file values: DATABASE_DSN sets database.dsn.
//
// # Usage
//
//	var cfg Config // embeds config.ServiceConfig
//	if err := config.Load("accounts", &cfg); err != nil {
//	    return err
//	}
package config
