// Package logger provides the structured logging used across the driver.
//
// It wraps Uber's Zap with a small leveled interface (Info, Debug, Warn,
// Error, Fatal) that carries an optional error plus free-form field maps,
// and integrates with the fx dependency injection framework for lifecycle
// management (buffered logs are flushed on shutdown).
//
// Basic usage:
//
//	import "github.com/emberdb/ember-go/pkg/logger"
//
//	log := logger.NewLoggerClient(logger.Config{Level: "info"})
//
//	log.Info("attachment opened", nil, map[string]interface{}{
//		"locator": "db.example.org:/data/crm.edb",
//	})
//
//	log.Error("fetch failed", err, map[string]interface{}{
//		"fetch_size": 64,
//	})
//
// The driver package consumes this logger through its own narrow Logger
// interface, so any implementation with the same method set can be
// substituted in tests.
package logger
