package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/restodir/restodir/internal/config"
	"github.com/restodir/restodir/internal/db"
	dbmongo "github.com/restodir/restodir/internal/db/mongo"
	restaurantrepo "github.com/restodir/restodir/internal/repository/restaurant"
	"github.com/restodir/restodir/internal/usecase/directory"
)

// idIndex keeps restaurant ids unique so duplicate imports are rejected by the store.
var idIndex = db.NewIndex("restaurant_id_unique").Asc("restaurant_id").Unique().MustBuild()

// newConnector assembles the store chain: MongoDB -> Instrumented -> Repo.
func newConnector(cfg config.Config, logger *zap.Logger) directory.Connector {
	return directory.ConnectorFunc(func(ctx context.Context, endpoint, database string) (directory.Repository, error) {
		base, err := dbmongo.NewStore(ctx, dbmongo.Config{
			URI:            endpoint,
			Database:       database,
			Collection:     cfg.Database.Collection,
			ConnectTimeout: cfg.Database.ConnectTimeout(),
		})
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by directory.Connect
		}
		store := db.NewInstrumentedStore(base, logger)

		if err := ensureIndex(ctx, store); err != nil {
			store.Close()
			return nil, err
		}

		return restaurantrepo.New(store,
			restaurantrepo.WithRegex(cfg.Search.Regex),
			restaurantrepo.WithAtomicGradeRemoval(cfg.Database.AtomicRemoval()),
		), nil
	})
}

// ensureIndex creates the id index on a database seen for the first time.
// Existing databases are left as they are.
func ensureIndex(ctx context.Context, store db.IndexManager) error {
	exists, err := store.DatabaseExists(ctx)
	if err != nil {
		return fmt.Errorf("check database: %w", err)
	}
	if exists {
		return nil
	}
	if err := store.CreateIndex(ctx, idIndex); err != nil {
		return fmt.Errorf("create %s: %w", idIndex.Name, err)
	}
	return nil
}
