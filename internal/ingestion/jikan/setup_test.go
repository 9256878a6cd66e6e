package jikan

import (
	"testing"

	"animeschedule/internal/config"
	"animeschedule/internal/metrics"
	"animeschedule/internal/zonetime"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSyncServiceFromConfig(t *testing.T) {
	cfg := &config.Config{
		JikanAPIURL:              "http://jikan.test/v4",
		CatalogRequestsPerSecond: 2,
		CatalogResolution:        "strict",
		CatalogMaxRetries:        1,
	}

	svc, err := NewSyncServiceFromConfig(cfg, zonetime.NewRegistry(), new(mockAnimeRepository), nil, metrics.Noop(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, zonetime.Strict, svc.normalizer.policy)

	client, ok := svc.source.(*Client)
	require.True(t, ok)
	assert.Equal(t, "http://jikan.test/v4", client.baseURL)
	assert.Equal(t, 1, client.maxRetries)

	cfg.CatalogResolution = "sloppy"
	_, err = NewSyncServiceFromConfig(cfg, zonetime.NewRegistry(), new(mockAnimeRepository), nil, metrics.Noop(), zerolog.Nop())
	assert.Error(t, err)
}
