package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" authorization = token ,bad, =x,k=v")
	require.Equal(t, map[string]string{"authorization": "token", "k": "v"}, got)
	require.Empty(t, ParseHeaders(""))
}

func TestInitRequiresServiceName(t *testing.T) {
	_, err := Init(context.Background(), Config{ServiceName: " "})
	require.Error(t, err)
}

func TestInitWithoutTracesIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "dogebridged"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	require.NotNil(t, Tracer())
}

func TestSampler(t *testing.T) {
	require.Contains(t, Sampler(0).Description(), "AlwaysOnSampler")
	require.Contains(t, Sampler(1.5).Description(), "AlwaysOnSampler")
	require.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestResourceCarriesBridgeProgram(t *testing.T) {
	res, err := newResource(Config{ServiceName: "dogebridged", Environment: "test", BridgeProgram: "prog"})
	require.NoError(t, err)
	value, ok := res.Set().Value(BridgeProgramKey)
	require.True(t, ok)
	require.Equal(t, "prog", value.AsString())
}
