package otel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oraxus/sports-gateway/internal/platform/otel"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	shutdown, flush, err := otel.Setup(context.Background(), otel.Settings{ServiceName: "test", Enabled: true})
	require.NoError(t, err)

	require.NoError(t, flush(context.Background()))
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupNoopWhenDisabled(t *testing.T) {
	shutdown, _, err := otel.Setup(context.Background(), otel.Settings{
		ServiceName: "test",
		Endpoint:    "http://localhost:4318",
		Enabled:     false,
	})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupCreatesProvider(t *testing.T) {
	// Non-routable address; nothing is exported because no spans are recorded
	shutdown, flush, err := otel.Setup(context.Background(), otel.Settings{
		ServiceName: "test",
		Environment: "dev",
		Endpoint:    "http://192.0.2.1:4318",
		Enabled:     true,
	})
	require.NoError(t, err)

	require.NoError(t, flush(context.Background()))
	require.NoError(t, shutdown(context.Background()))
}
