package resilience_test

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viasegura/viasegura/internal/provider/resilience"
)

func TestRegistryRegistersClients(t *testing.T) {
	registry := resilience.NewRegistry()

	cfg := resilience.DefaultClientConfig("openrouteservice")
	cfg.Registry = registry
	resilience.NewClient(cfg)

	health := registry.Health("openrouteservice")
	require.NotNil(t, health)
	assert.Equal(t, "openrouteservice", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.IsHealthy())
	assert.Nil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := resilience.NewRegistry()
	assert.Nil(t, registry.Health("unknown"))
	assert.Empty(t, registry.AllHealth())
}

func TestRegistryRecordsOutcomes(t *testing.T) {
	registry := resilience.NewRegistry()

	cfg := resilience.DefaultClientConfig("nominatim")
	cfg.Registry = registry
	resilience.NewClient(cfg)

	registry.RecordSuccess("nominatim")
	health := registry.Health("nominatim")
	require.NotNil(t, health.LastSuccessAt)
	assert.Empty(t, health.LastError)

	registry.RecordFailure("nominatim", errors.New("upstream timeout"))
	health = registry.Health("nominatim")
	require.NotNil(t, health.LastFailureAt)
	assert.Equal(t, "upstream timeout", health.LastError)
}

func TestRegistryAllHealth(t *testing.T) {
	registry := resilience.NewRegistry()

	for _, name := range []string{"openrouteservice", "nominatim", "modelserver"} {
		cfg := resilience.DefaultClientConfig(name)
		cfg.Registry = registry
		resilience.NewClient(cfg)
	}

	all := registry.AllHealth()
	assert.Len(t, all, 3)
	names := make(map[string]bool, len(all))
	for _, h := range all {
		names[h.Name] = true
	}
	assert.True(t, names["openrouteservice"] && names["nominatim"] && names["modelserver"])
}
