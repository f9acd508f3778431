// Package logger provides structured logging for the accounts service
// using zerolog.
//
// Loggers are created from Config and passed explicitly to the components
// that need them. A process-wide default exists for bootstrap code only.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg, "accounts").WithComponent("database")
//	log.Info("connected", logger.Fields("driver", "postgres"))
package logger
