package logger

import "go.uber.org/zap"

// convertToZapFields converts an error and additional field maps into Zap's
// structured logging fields. If multiple field maps contain the same key,
// the later maps override earlier ones.
func (l *Logger) convertToZapFields(err error, fields ...map[string]interface{}) []zap.Field {
	var zapFields []zap.Field
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}

	for _, fieldMap := range fields {
		for key, value := range fieldMap {
			zapFields = append(zapFields, zap.Any(key, value))
		}
	}
	return zapFields
}

// Info logs an informational message, along with an optional error and
// structured fields. Use Info for general progress and successful
// operations.
//
// Example:
//
//	logger.Info("database created", nil, map[string]interface{}{
//	    "locator": "/data/crm.edb",
//	})
func (l *Logger) Info(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, l.convertToZapFields(err, fields...)...)
}

// Debug logs a debug-level message, useful for development and
// troubleshooting.
//
// Example:
//
//	logger.Debug("transaction started", nil, map[string]interface{}{
//	    "isolation": "SNAPSHOT",
//	})
func (l *Logger) Debug(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Debug(msg, l.convertToZapFields(err, fields...)...)
}

// Warn logs a warning message, indicating situations that aren't failures
// but might need attention.
func (l *Logger) Warn(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, l.convertToZapFields(err, fields...)...)
}

// Error logs an error message, including details of the error and
// additional context fields.
//
// Example:
//
//	if err := att.Disconnect(ctx); err != nil {
//	    logger.Error("failed to disconnect", err, map[string]interface{}{
//	        "locator": "/data/crm.edb",
//	    })
//	}
func (l *Logger) Error(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, l.convertToZapFields(err, fields...)...)
}

// Fatal logs a critical error message and terminates the application with
// os.Exit(1). Use it only for errors that make it impossible to continue.
func (l *Logger) Fatal(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Fatal(msg, l.convertToZapFields(err, fields...)...)
}
