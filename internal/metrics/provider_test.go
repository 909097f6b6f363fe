package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("test_app")

	require.NoError(t, err)
	assert.Equal(t, "test_app", provider.Namespace())
	assert.NotNil(t, provider.MeterProvider())
	assert.NotNil(t, provider.registry)
}

func TestProvider_HandlerExposesRuntimeMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	body := scrape(t, provider)
	assert.Contains(t, body, "go_goroutines")
}

func TestProvider_Shutdown(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)
	assert.NoError(t, provider.Shutdown(context.Background()))

	empty := &Provider{}
	assert.NoError(t, empty.Shutdown(context.Background()))
}
