// Package tracer provides distributed tracing functionality using OpenTelemetry.
//
// The tracer package offers a simplified interface for implementing distributed tracing
// in Go applications. It abstracts away the complexity of OpenTelemetry to provide
// a clean, easy-to-use API for creating and managing trace spans. The driver package
// accepts a *Tracer through driver.WithTracer, which puts a span around every
// connect, prepare, statement execution and cursor fetch.
//
// Core Features:
//   - Simple span creation and management
//   - Error recording and status tracking
//   - Customizable span attributes
//   - Cross-service trace context propagation
//   - Integration with OpenTelemetry backends
//
// Basic Usage:
//
//	import (
//		"context"
//		"github.com/emberdb/ember-go/pkg/logger"
//		"github.com/emberdb/ember-go/pkg/tracer"
//	)
//
//	// Create a logger
//	log := logger.NewLoggerClient(logger.Config{Level: "info"})
//
//	// Create a tracer
//	tracerClient := tracer.NewClient(tracer.Config{
//		ServiceName:  "my-service",
//		AppEnv:       "development",
//		EnableExport: true,
//	}, log)
//
//	// Create a span
//	ctx, span := tracerClient.StartSpan(ctx, "import-orders")
//	defer span.End()
//
//	// Add attributes to the span
//	tracerClient.SetAttributes(span, map[string]interface{}{
//		"db.name": "orders.edb",
//		"request.id": "abc-xyz",
//	})
//
//	// Record errors
//	if err != nil {
//		tracerClient.RecordErrorOnSpan(span, err)
//		return err
//	}
//
// Tracing Driver Operations:
//
//	client := driver.NewClient(eng, driver.Config{}, log, driver.WithTracer(tracerClient))
//
//	att, _ := client.Connect(ctx, nil)
//	tx, _ := att.StartTransaction(ctx, nil)
//
//	// Execute runs inside a child span of whatever span is on ctx,
//	// so database work lines up under the request trace.
//	_, err := att.Execute(ctx, tx, "UPDATE accounts SET balance = balance - ? WHERE id = ?", amount, id)
//
// FX Module Integration:
//
// This package provides an fx module for easy integration:
//
//	app := fx.New(
//		logger.FXModule,
//		tracer.FXModule,
//		// ... other modules
//	)
//	app.Run()
//
// Best Practices:
//
//   - Create spans for significant operations in your code
//   - Always defer span.End() immediately after creating a span
//   - Use descriptive span names that identify the operation
//   - Add relevant attributes to provide context
//   - Record errors when operations fail
//   - Ensure trace context is properly propagated between services
//
// Thread Safety:
//
// All methods on the Tracer type and Span interface are safe for concurrent use
// by multiple goroutines.
package tracer
