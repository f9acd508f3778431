package bootstrap

import (
	"github.com/kbukum/accounts/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig satisfies it as long as it
// provides its own ApplyDefaults and Validate.
//
//	type Config struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    Database database.Config `mapstructure:"database"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
