package tracer

// Config defines the configuration structure for the tracer package. It
// controls how the OpenTelemetry tracer provider is set up and whether
// spans are exported to a collector.
type Config struct {
	// ServiceName identifies the service in exported traces. It is set
	// as the service.name resource attribute on every span.
	//
	// Example:
	//   ServiceName: "order-importer"
	//   → spans carry service.name="order-importer"
	//
	// This setting can be configured via:
	//   - YAML configuration with the "service_name" key
	//   - Environment variable TRACER_SERVICE_NAME
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv names the deployment environment the service runs in. It is
	// set as the deployment.environment resource attribute and as an
	// "environment" tag on every span.
	//
	// Example values:
	//   - "development"
	//   - "staging"
	//   - "production"
	//
	// This setting can be configured via:
	//   - YAML configuration with the "app_env" key
	//   - Environment variable TRACER_APP_ENV
	AppEnv string `yaml:"app_env" envconfig:"TRACER_APP_ENV"`

	// EnableExport controls whether spans are exported over OTLP HTTP.
	//
	// When true, an OTLP HTTP exporter is created and spans are batched
	// and sent to the endpoint configured through the standard
	// OTEL_EXPORTER_OTLP_* environment variables. When false, spans are
	// still created and propagated but never leave the process, which is
	// the right mode for tests and local development.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "enable_export" key
	//   - Environment variable TRACER_ENABLE_EXPORT
	//
	// Default: false
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}
