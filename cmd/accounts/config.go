package main

import (
	"fmt"

	"github.com/kbukum/accounts/account"
	"github.com/kbukum/accounts/audit"
	"github.com/kbukum/accounts/config"
	"github.com/kbukum/accounts/database"
	"github.com/kbukum/accounts/observability"
	"github.com/kbukum/accounts/redis"
	"github.com/kbukum/accounts/server"
)

// Config is the accounts service configuration.
type Config struct {
	config.ServiceConfig `mapstructure:",squash"`

	Server        server.Config        `mapstructure:"server"`
	Database      database.Config      `mapstructure:"database"`
	Redis         redis.Config         `mapstructure:"redis"`
	Audit         audit.Config         `mapstructure:"audit"`
	Observability observability.Config `mapstructure:"observability"`
	Account       account.SeedConfig   `mapstructure:"account"`
}

// ApplyDefaults fills in every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Audit.ApplyDefaults()
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = c.Version
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate checks every section and the dependencies between them.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if !c.Database.Enabled {
		return fmt.Errorf("database.enabled must be true")
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Audit.Validate(); err != nil {
		return err
	}
	if (c.Audit.Sink == audit.SinkRedis || c.Audit.Sink == audit.SinkMulti) && !c.Redis.Enabled {
		return fmt.Errorf("audit.sink %s requires redis.enabled", c.Audit.Sink)
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	if c.Account.AdminUsername != "" && c.Account.AdminEmail == "" {
		return fmt.Errorf("account.admin_email is required when account.admin_username is set")
	}
	return nil
}
