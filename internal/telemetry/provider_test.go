package telemetry_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-auth-frontdoor/internal/telemetry"
	"github.com/stretchr/testify/require"
)

type telemetryConfig struct {
	endpoint string
	enabled  bool
}

func (c telemetryConfig) GetOtelEndpoint() string { return c.endpoint }
func (c telemetryConfig) GetOtelEnabled() bool    { return c.enabled }

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), telemetryConfig{enabled: true}, "test-service")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_NoopWhenDisabled(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), telemetryConfig{endpoint: "http://localhost:4318"}, "test-service")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, shutdown(ctx))
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address, nothing is exported before shutdown
	shutdown, err := telemetry.Setup(context.Background(), telemetryConfig{endpoint: "http://192.0.2.1:4318", enabled: true}, "test-service")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
