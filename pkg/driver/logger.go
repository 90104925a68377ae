package driver

// Logger defines the interface for logging operations within the driver
// package. It provides methods for different logging levels to track
// attachment lifecycles, statement execution and error handling.
//
//go:generate mockgen -source=logger.go -destination=mock_logger.go -package=driver
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}
