package jikan

import (
	"fmt"

	"animeschedule/internal/config"
	"animeschedule/internal/logging"
	"animeschedule/internal/metrics"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/zonetime"

	"github.com/rs/zerolog"
)

// NewSyncServiceFromConfig wires client, normalizer and sync service from
// the environment configuration.
func NewSyncServiceFromConfig(
	cfg *config.Config,
	zones *zonetime.Registry,
	anime repository.AnimeRepository,
	state repository.SyncStateRepository,
	m metrics.Provider,
	logger zerolog.Logger,
) (*SyncService, error) {
	policy, err := zonetime.ParsePolicy(cfg.CatalogResolution)
	if err != nil {
		return nil, fmt.Errorf("catalog resolution: %w", err)
	}

	client := NewClient(ClientConfig{
		BaseURL:           cfg.JikanAPIURL,
		RequestsPerSecond: cfg.CatalogRequestsPerSecond,
		PageDelay:         cfg.CatalogPageDelay,
		MaxRetries:        cfg.CatalogMaxRetries,
	}, logging.Component(logger, "jikan-client"))

	normalizer := NewNormalizer(zones, policy, m, logging.Component(logger, "catalog-normalizer"))

	return NewSyncService(client, normalizer, anime, state, m, logging.Component(logger, "catalog-sync")), nil
}
