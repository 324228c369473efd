package config

// Telemetry configures OpenTelemetry trace export.
type Telemetry struct {
	OtelEndpoint string `env:"OTEL_ENDPOINT"`
	OtelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

var _ TelemetryConfig = Telemetry{}

func (t Telemetry) GetOtelEndpoint() string {
	return t.OtelEndpoint
}

func (t Telemetry) GetOtelEnabled() bool {
	return t.OtelEnabled
}
