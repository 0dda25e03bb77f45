// Package persistence selects the credential store backend from configuration.
package persistence

import (
	"context"
	"io"
	"log/slog"

	"credcore/config"
	"credcore/internal/domain/repository"
	"credcore/internal/infra/persistence/bolt"
	"credcore/internal/infra/persistence/memory"
	"credcore/internal/infra/persistence/postgres"
	"credcore/internal/infra/persistence/sqlite"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// closableStore is a CredentialStore that owns resources.
type closableStore interface {
	repository.CredentialStore
	io.Closer
}

// StoreParams holds dependencies for the credential store, injected by Fx
type StoreParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewCredentialStore opens the store named by storage.driver and closes it on shutdown.
func NewCredentialStore(params StoreParams) (repository.CredentialStore, error) {
	store, err := Open(params.Ctx, params.Config, params.Logger)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Closing credential store")

			return store.Close()
		},
	})

	return store, nil
}

// Open builds the configured store without any lifecycle wiring.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (closableStore, error) {
	driver := config.StorageDriverMemory
	path := ""
	if cfg.Storage != nil {
		driver = cfg.Storage.Driver
		path = cfg.Storage.Path
	}

	logger.Info("Opening credential store",
		slog.String("driver", driver),
		slog.String("path", path),
	)

	switch driver {
	case config.StorageDriverMemory:
		return memory.NewCredentialStore(), nil
	case config.StorageDriverSQLite:
		store, err := sqlite.New(ctx, path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open sqlite credential store")
		}

		return store, nil
	case config.StorageDriverBolt:
		store, err := bolt.New(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open bolt credential store")
		}

		return store, nil
	case config.StorageDriverPostgres:
		store, err := postgres.New(ctx, cfg, logger)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open postgres credential store")
		}

		return store, nil
	default:
		return nil, errors.Errorf("unknown storage driver: %s", driver)
	}
}

// Module provides the persistence FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewCredentialStore),
)
