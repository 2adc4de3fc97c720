package config

import (
	"context"
	"fmt"

	"github.com/quarryfs/quarry/internal/logger"
	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
	"github.com/quarryfs/quarry/pkg/catalog/store/badger"
	"github.com/quarryfs/quarry/pkg/catalog/store/memory"
	"github.com/quarryfs/quarry/pkg/catalog/store/postgres"
	"github.com/quarryfs/quarry/pkg/field"
	"github.com/quarryfs/quarry/pkg/metrics"
	prommetrics "github.com/quarryfs/quarry/pkg/metrics/prometheus"
	"github.com/quarryfs/quarry/pkg/render"
	"github.com/quarryfs/quarry/pkg/staging"
)

// NewCatalogStore creates the catalog store selected by cfg.Catalog.Backend.
//
// The caller owns the returned store and must Close it on shutdown.
func NewCatalogStore(ctx context.Context, cfg *Config) (catalog.Store, error) {
	logger.Debug("Creating catalog store", "backend", cfg.Catalog.Backend)

	switch cfg.Catalog.Backend {
	case "memory":
		return memory.NewMemoryStore(), nil
	case "badger":
		store, err := badger.NewBadgerStore(ctx, cfg.Catalog.Badger)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger catalog: %w", err)
		}
		return store, nil
	case "postgres":
		store, err := postgres.NewPostgresStore(ctx, &cfg.Catalog.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres catalog: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}
}

// NewFieldRegistry builds the asset fields declared in cfg.Fields and
// collects them into a registry keyed by handle.
//
// All fields share the given store and stager. Metrics collection is
// wired in when the Prometheus registry has been initialized, otherwise
// the fields run without instrumentation.
func NewFieldRegistry(cfg *Config, store catalog.Store, stager *staging.Stager) (*field.Registry, error) {
	renderer := render.NewObjectRenderer()
	fieldMetrics := prommetrics.NewFieldMetrics()

	fields := make([]*field.Field, 0, len(cfg.Fields))
	for _, spec := range cfg.Fields {
		f := field.NewField(
			spec.ID,
			spec.Handle,
			spec.FieldConfig,
			store,
			renderer,
			stager,
			cfg.Scratch.VolumeID,
			fieldMetrics,
		)
		fields = append(fields, f)
		logger.Debug("Registered asset field",
			"handle", spec.Handle,
			"id", spec.ID,
			"volume", spec.ActiveVolumeID())
	}

	registry, err := field.NewRegistry(fields...)
	if err != nil {
		return nil, fmt.Errorf("failed to build field registry: %w", err)
	}
	return registry, nil
}

// EnsureVolumeRoots creates the root folder of every volume referenced by
// the configuration: the scratch volume plus each field's upload volume.
// Roots that already exist are left untouched.
func EnsureVolumeRoots(ctx context.Context, store catalog.Store, cfg *Config) error {
	volumes := map[string]bool{cfg.Scratch.VolumeID: true}
	for _, spec := range cfg.Fields {
		if v := spec.ActiveVolumeID(); v != "" {
			volumes[v] = true
		}
	}

	for volumeID := range volumes {
		if _, err := store.CreateRootFolder(ctx, volumeID); err != nil {
			if catalogerrors.IsConflict(err) {
				continue
			}
			return fmt.Errorf("failed to create root folder for volume %q: %w", volumeID, err)
		}
		logger.Info("Created volume root folder", "volume", volumeID)
	}
	return nil
}

// MetricsResult holds the outcome of metrics initialization.
type MetricsResult struct {
	// Server is the metrics HTTP server, or nil when metrics are disabled.
	Server *metrics.Server
}

// InitializeMetrics initializes the Prometheus registry and metrics
// server when metrics are enabled. When disabled it returns an empty
// result and collection stays off.
func InitializeMetrics(cfg *Config) (MetricsResult, error) {
	if !cfg.Metrics.Enabled {
		return MetricsResult{}, nil
	}

	metrics.InitRegistry()

	server, err := metrics.NewServer(cfg.Metrics.Port)
	if err != nil {
		return MetricsResult{}, fmt.Errorf("failed to create metrics server: %w", err)
	}
	return MetricsResult{Server: server}, nil
}
